package datasync

import (
	"strconv"

	"github.com/jhoicas/consulta-tarifas/internal/domain/entity"
	"github.com/jhoicas/consulta-tarifas/internal/domain/repository"
	"github.com/jhoicas/consulta-tarifas/internal/domain/sanitize"
)

// Documents reparte el dataset en las colecciones remotas, la operación inversa de la
// carga desde la nube. Usuarios, puntos de venta y grupos usan su id como id de
// documento (que se quita de los datos); artículos por código y tarifas por código y
// zona conservan todos sus campos. Los elementos que no son objetos no tienen documento.
func Documents(data entity.AppData) map[string][]repository.RemoteDocument {
	out := make(map[string][]repository.RemoteDocument, 5)

	users := make([]repository.RemoteDocument, 0, len(data.Users))
	for _, u := range data.Users {
		users = append(users, splitID(sanitize.UserToMap(u)))
	}
	out[repository.CollectionUsers] = users

	pos := make([]repository.RemoteDocument, 0, len(data.Pos))
	for _, p := range data.Pos {
		pos = append(pos, splitID(sanitize.PointOfSaleToMap(p)))
	}
	out[repository.CollectionPos] = pos

	groups := make([]repository.RemoteDocument, 0, len(data.Groups))
	for i, g := range data.Groups.Records() {
		d := splitID(copyRecord(g))
		if d.ID == "" {
			d.ID = "group-" + strconv.Itoa(i+1)
		}
		groups = append(groups, d)
	}
	out[repository.CollectionGroups] = groups

	out[repository.CollectionArticulos] = keyed(data.Articulos.Records(), func(r entity.Record) string {
		return sanitize.Str(r["código"])
	})
	out[repository.CollectionTarifas] = keyed(data.Tarifas.Records(), func(r entity.Record) string {
		return sanitize.Str(r["código"]) + "_" + sanitize.Str(r["zona"])
	})
	return out
}

func splitID(m map[string]any) repository.RemoteDocument {
	id := sanitize.Str(m["id"])
	delete(m, "id")
	return repository.RemoteDocument{ID: id, Data: m}
}

// keyed usa key como id de documento; los ids repetidos o vacíos reciben sufijo de posición.
func keyed(records []entity.Record, key func(entity.Record) string) []repository.RemoteDocument {
	seen := make(map[string]bool, len(records))
	out := make([]repository.RemoteDocument, 0, len(records))
	for i, r := range records {
		id := key(r)
		if id == "" || id == "_" || seen[id] {
			id = id + "#" + strconv.Itoa(i+1)
		}
		seen[id] = true
		out = append(out, repository.RemoteDocument{ID: id, Data: copyRecord(r)})
	}
	return out
}

func copyRecord(r entity.Record) map[string]any {
	m := make(map[string]any, len(r))
	for k, v := range r {
		m[k] = v
	}
	return m
}
