package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/jhoicas/consulta-tarifas/internal/application/datasync"
	"github.com/jhoicas/consulta-tarifas/internal/application/dto"
	"github.com/jhoicas/consulta-tarifas/internal/application/importer"
	"github.com/jhoicas/consulta-tarifas/internal/application/usecase"
	"github.com/jhoicas/consulta-tarifas/internal/domain"
	"github.com/jhoicas/consulta-tarifas/internal/domain/entity"
	"github.com/jhoicas/consulta-tarifas/internal/domain/sanitize"
	"github.com/jhoicas/consulta-tarifas/internal/infrastructure/pdf"
)

func newBackupCmd(opts *rootOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Exportar el dataset completo a JSON (incluye claves)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, opts, func(ctx context.Context, s *session) error {
				data, err := s.sync.GetAppData(ctx)
				if err != nil {
					return err
				}
				b, err := json.MarshalIndent(data, "", "  ")
				if err != nil {
					return fmt.Errorf("serializar dataset: %w", err)
				}
				if err := writeOutput(cmd.OutOrStdout(), output, append(b, '\n')); err != nil {
					return err
				}
				s.log.Info().Str("origen", string(s.sync.Status().Source)).Msg("copia exportada")
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "archivo de salida (por defecto stdout)")
	return cmd
}

func newRestoreCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <archivo.json>",
		Short: "Reemplazar el dataset por una copia de seguridad",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("leer copia: %w", err)
			}
			raw := sanitize.FromJSON(b)
			if len(raw.Users) == 0 {
				return errors.New("la copia de seguridad no contiene usuarios")
			}
			return withSession(cmd, opts, func(ctx context.Context, s *session) error {
				commit, err := s.sync.OverwriteAllData(ctx, sanitize.Sanitize(raw))
				if err != nil {
					return err
				}
				return report(ctx, cmd.OutOrStdout(), commit)
			})
		},
	}
}

func newImportCmd(opts *rootOptions) *cobra.Command {
	var (
		enc     string
		replace bool
	)
	cmd := &cobra.Command{
		Use:   "import-tarifas <archivo.csv>",
		Short: "Importar tarifas desde CSV (código;zona;precio;pvp;oferta)",
		Long: `Importa tarifas desde un CSV exportado de la hoja de cálculo.

Por defecto las filas se mezclan con las tarifas existentes usando código y zona
como clave. Con --replace la lista importada sustituye a todas las tarifas.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("abrir CSV: %w", err)
			}
			defer f.Close()
			incoming, err := importer.ParseTarifasCSV(f, enc)
			if err != nil {
				return err
			}
			return withSession(cmd, opts, func(ctx context.Context, s *session) error {
				tarifas := entity.NewCollection(incoming)
				if !replace {
					current, err := s.sync.GetAppData(ctx)
					if err != nil {
						return err
					}
					tarifas = importer.MergeTarifas(current.Tarifas, incoming)
				}
				commit, err := s.sync.SaveAllData(ctx, datasync.DataPatch{Tarifas: tarifas})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d tarifas importadas (%d en total)\n", len(incoming), len(tarifas))
				return report(ctx, cmd.OutOrStdout(), commit)
			})
		},
	}
	cmd.Flags().StringVar(&enc, "encoding", importer.EncodingUTF8, "codificación del CSV: utf-8, latin1, windows-1252")
	cmd.Flags().BoolVar(&replace, "replace", false, "sustituir todas las tarifas en lugar de mezclar")
	return cmd
}

func newPDFCmd(opts *rootOptions) *cobra.Command {
	var (
		output string
		filter dto.TarifaFilter
		pvp    bool
	)
	cmd := &cobra.Command{
		Use:   "pdf",
		Short: "Generar la lista de precios en PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, opts, func(ctx context.Context, s *session) error {
				uc := usecase.NewTarifaUseCase(s.sync, pdf.NewMarotoTarifaPDF())
				b, err := uc.ExportPDF(ctx, filter, pvp)
				if err != nil {
					return err
				}
				return writeOutput(cmd.OutOrStdout(), output, b)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "tarifa.pdf", "archivo de salida ('-' para stdout)")
	cmd.Flags().StringVar(&filter.Zona, "zona", "", "zona de tarifa")
	cmd.Flags().StringVar(&filter.Familia, "familia", "", "id de familia")
	cmd.Flags().StringVarP(&filter.Q, "query", "q", "", "texto en código o descripción")
	cmd.Flags().BoolVar(&pvp, "pvp", false, "incluir la columna PVP")
	return cmd
}

func newPushCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "push-collections",
		Short: "Publicar el dataset actual en las colecciones de la nube",
		Long: `Escribe usuarios, puntos de venta, grupos, artículos y tarifas como documentos
sueltos en el almacén remoto, además del documento principal.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, opts, func(ctx context.Context, s *session) error {
				if s.stores.Remote == nil {
					return domain.ErrRemoteNotConfigured
				}
				data, err := s.sync.GetAppData(ctx)
				if err != nil {
					return err
				}
				docs := datasync.Documents(data)
				names := make([]string, 0, len(docs))
				for name := range docs {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					if err := s.stores.Remote.PutDocuments(ctx, name, docs[name]); err != nil {
						return fmt.Errorf("publicar %s: %w", name, err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%-10s %d documentos\n", name, len(docs[name]))
				}
				// El documento principal se sube con un guardado vacío.
				commit, err := s.sync.SaveAllData(ctx, datasync.DataPatch{})
				if err != nil {
					return err
				}
				return report(ctx, cmd.OutOrStdout(), commit)
			})
		},
	}
}

// report espera la subida a la nube e informa del resultado.
func report(ctx context.Context, w io.Writer, commit *datasync.Commit) error {
	_ = commit.Remote.Wait(ctx)
	state := commit.Remote.State()
	fmt.Fprintf(w, "guardado local: %s\nnube: %s\n", commit.Data.LastUpdated, state)
	if state == datasync.RemoteFailed {
		return errors.New("los datos solo se guardaron en este dispositivo")
	}
	return nil
}

func writeOutput(stdout io.Writer, path string, b []byte) error {
	if path == "" || path == "-" {
		_, err := stdout.Write(b)
		return err
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("escribir %s: %w", path, err)
	}
	return nil
}
