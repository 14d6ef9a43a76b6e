// Command migrate aplica o revierte el esquema embebido.
//
//	migrate up | down | version
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jhoicas/inventory-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/inventory-ledger/pkg/config"
	"github.com/jhoicas/inventory-ledger/pkg/logger"
)

func main() {
	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "migrate"})

	if err := run(cmd, cfg.DB.ConnectionString(), log); err != nil {
		log.Error().Err(err).Str("cmd", cmd).Msg("migración fallida")
		if errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "uso: migrate up | down | version\n")
			os.Exit(2)
		}
		os.Exit(1)
	}
}

var errUsage = errors.New("comando desconocido")

// run ejecuta cmd con el migrador y lo cierra antes de volver.
func run(cmd, dsn string, log *logger.Logger) error {
	mig, err := postgres.NewMigrator(dsn, log)
	if err != nil {
		return fmt.Errorf("inicializar migrador: %w", err)
	}
	defer func() {
		if cerr := mig.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("cerrar migrador")
		}
	}()

	switch cmd {
	case "up":
		return mig.Up()
	case "down":
		return mig.Down()
	case "version":
		v, dirty, err := mig.Version()
		if err != nil {
			return err
		}
		fmt.Printf("version=%d dirty=%t\n", v, dirty)
		return nil
	default:
		return fmt.Errorf("%q: %w", cmd, errUsage)
	}
}
