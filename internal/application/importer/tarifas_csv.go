// Package importer carga tarifas desde hojas de cálculo exportadas a CSV.
//
// Formato esperado (cabecera obligatoria, orden libre, separador ';' o ','):
//
//	código;zona;precio;pvp;oferta
//	1001;CH1;18,50;24,90;no
//
// Las columnas desconocidas se conservan en el registro con su nombre original.
package importer

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/consulta-tarifas/internal/application/usecase"
	"github.com/jhoicas/consulta-tarifas/internal/domain/entity"
	"github.com/jhoicas/consulta-tarifas/internal/domain/sanitize"
)

// Codificaciones de entrada soportadas.
const (
	EncodingUTF8    = "utf-8"
	EncodingLatin1  = "latin1"
	EncodingWin1252 = "windows-1252"
)

// ErrMissingColumn falta una columna obligatoria en la cabecera.
var ErrMissingColumn = errors.New("importer: falta columna obligatoria")

// Columnas canónicas (sin acentos, en minúsculas).
const (
	colCodigo = "codigo"
	colZona   = "zona"
	colPrecio = "precio"
	colPVP    = "pvp"
	colOferta = "oferta"
)

// ParseTarifasCSV lee el CSV y devuelve un registro por fila con código. Las filas sin
// código se ignoran; un precio no numérico es un error con el número de línea.
func ParseTarifasCSV(r io.Reader, enc string) ([]entity.Record, error) {
	dec, err := decoder(enc)
	if err != nil {
		return nil, err
	}
	br := bufio.NewReader(transform.NewReader(r, dec))

	first, err := br.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("importer: leer cabecera: %w", err)
	}
	if strings.TrimSpace(first) == "" {
		return nil, fmt.Errorf("importer: archivo vacío")
	}

	cr := csv.NewReader(io.MultiReader(strings.NewReader(first), br))
	cr.Comma = detectDelimiter(first)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("importer: leer cabecera: %w", err)
	}
	cols := make([]string, len(header))
	index := make(map[string]int, len(header))
	for i, h := range header {
		cols[i] = normalizeHeader(h)
		if _, dup := index[cols[i]]; !dup {
			index[cols[i]] = i
		}
	}
	for _, req := range []string{colCodigo, colZona, colPrecio} {
		if _, ok := index[req]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, req)
		}
	}

	var out []entity.Record
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("importer: %w", err)
		}
		line, _ := cr.FieldPos(0)
		field := func(name string) string {
			i, ok := index[name]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		codigo := field(colCodigo)
		if codigo == "" {
			continue
		}
		precio, err := usecase.ParsePriceString(field(colPrecio))
		if err != nil {
			return nil, fmt.Errorf("importer: línea %d: precio %q inválido", line, field(colPrecio))
		}
		rec := entity.Record{
			"código": codigo,
			"zona":   field(colZona),
			"precio": precio.InexactFloat64(),
			"oferta": sanitize.Bool(field(colOferta)) || isYes(field(colOferta)),
		}
		if s := field(colPVP); s != "" {
			pvp, err := usecase.ParsePriceString(s)
			if err != nil {
				return nil, fmt.Errorf("importer: línea %d: pvp %q inválido", line, s)
			}
			rec["pvp"] = pvp.InexactFloat64()
		}
		for i, c := range cols {
			switch c {
			case colCodigo, colZona, colPrecio, colPVP, colOferta, "":
				continue
			}
			if i < len(row) {
				rec[strings.TrimSpace(header[i])] = strings.TrimSpace(row[i])
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

// MergeTarifas superpone incoming sobre existing usando (código, zona) como clave.
// Las tarifas existentes conservan su posición (también los elementos que no son
// objetos); las nuevas se añaden al final.
func MergeTarifas(existing entity.Collection, incoming []entity.Record) entity.Collection {
	key := func(r entity.Record) string {
		return sanitize.Str(r["código"]) + "\x00" + strings.ToUpper(sanitize.Str(r["zona"]))
	}
	pos := make(map[string]int, len(existing))
	out := make(entity.Collection, 0, len(existing)+len(incoming))
	for _, v := range existing {
		switch r := v.(type) {
		case entity.Record:
			pos[key(r)] = len(out)
		case map[string]any:
			pos[key(entity.Record(r))] = len(out)
		}
		out = append(out, v)
	}
	for _, r := range incoming {
		k := key(r)
		if i, ok := pos[k]; ok {
			out[i] = r
			continue
		}
		pos[k] = len(out)
		out = append(out, r)
	}
	return out
}

func decoder(enc string) (transform.Transformer, error) {
	var e encoding.Encoding
	switch strings.ToLower(strings.TrimSpace(enc)) {
	case "", EncodingUTF8, "utf8":
		// Quita el BOM que añade Excel.
		return xunicode.UTF8BOM.NewDecoder(), nil
	case EncodingLatin1, "iso-8859-1", "iso8859-1":
		e = charmap.ISO8859_1
	case EncodingWin1252, "cp1252":
		e = charmap.Windows1252
	default:
		return nil, fmt.Errorf("importer: codificación %q no soportada", enc)
	}
	return e.NewDecoder(), nil
}

func detectDelimiter(headerLine string) rune {
	if strings.Count(headerLine, ";") >= strings.Count(headerLine, ",") {
		return ';'
	}
	return ','
}

// normalizeHeader pasa a minúsculas y quita acentos: "Código" → "codigo".
func normalizeHeader(h string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, err := transform.String(t, strings.TrimSpace(h))
	if err != nil {
		s = h
	}
	return strings.ToLower(strings.TrimPrefix(s, "\ufeff"))
}

func isYes(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "s", "x", "y":
		return true
	}
	return false
}
