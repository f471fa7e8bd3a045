// tarifasctl herramienta de mantenimiento del dataset de Consulta de Tarifas: copias de
// seguridad, restauración, importación de tarifas desde CSV, exportación a PDF y
// publicación de colecciones en la nube.
//
// Usa la misma configuración (variables de entorno / .env) que la API.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jhoicas/consulta-tarifas/internal/application/datasync"
	"github.com/jhoicas/consulta-tarifas/internal/infrastructure/stores"
	"github.com/jhoicas/consulta-tarifas/pkg/config"
	"github.com/jhoicas/consulta-tarifas/pkg/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type rootOptions struct {
	timeout time.Duration
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "tarifasctl",
		Short:         "Mantenimiento del dataset de Consulta de Tarifas",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 60*time.Second, "límite de la operación completa")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "mostrar logs de depuración")

	root.AddCommand(
		newBackupCmd(opts),
		newRestoreCmd(opts),
		newImportCmd(opts),
		newPDFCmd(opts),
		newPushCmd(opts),
	)
	return root
}

// session almacenes y sincronizador abiertos para un comando.
type session struct {
	cfg    *config.Config
	log    *logger.Logger
	stores *stores.Stores
	sync   *datasync.Synchronizer
}

func openSession(ctx context.Context, opts *rootOptions, stderr io.Writer) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("cargar configuración: %w", err)
	}
	level := zerolog.WarnLevel
	if opts.verbose {
		level = zerolog.DebugLevel
	}
	log := logger.FromZerolog(zerolog.New(zerolog.ConsoleWriter{Out: stderr}).Level(level).With().Timestamp().Logger())

	st, err := stores.Open(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return &session{
		cfg:    cfg,
		log:    log,
		stores: st,
		sync:   datasync.New(st.Cache, st.RemoteStore(), log, datasync.WithRemoteTimeout(cfg.Remote.Timeout)),
	}, nil
}

// close espera las escrituras pendientes y cierra los almacenes.
func (s *session) close(ctx context.Context) {
	if err := s.sync.Close(ctx); err != nil {
		s.log.Warn().Err(err).Msg("escrituras pendientes sin terminar")
	}
	if err := s.stores.Close(); err != nil {
		s.log.Warn().Err(err).Msg("cerrar almacenes")
	}
}

// withSession ejecuta fn con una sesión abierta bajo el timeout global.
func withSession(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, s *session) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()
	s, err := openSession(ctx, opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer s.close(ctx)
	return fn(ctx, s)
}
