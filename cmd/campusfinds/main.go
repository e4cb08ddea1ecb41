package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/campusfinds/campusfinds/internal/profile"
	"github.com/campusfinds/campusfinds/server"
	"github.com/campusfinds/campusfinds/store"
	"github.com/campusfinds/campusfinds/store/db"
)

const (
	greetingBanner = `
 ██████╗ █████╗ ███╗   ███╗██████╗ ██╗   ██╗███████╗███████╗██╗███╗   ██╗██████╗ ███████╗
██╔════╝██╔══██╗████╗ ████║██╔══██╗██║   ██║██╔════╝██╔════╝██║████╗  ██║██╔══██╗██╔════╝
██║     ███████║██╔████╔██║██████╔╝██║   ██║███████╗█████╗  ██║██╔██╗ ██║██║  ██║███████╗
██║     ██╔══██║██║╚██╔╝██║██╔═══╝ ██║   ██║╚════██║██╔══╝  ██║██║╚██╗██║██║  ██║╚════██║
╚██████╗██║  ██║██║ ╚═╝ ██║██║     ╚██████╔╝███████║██║     ██║██║ ╚████║██████╔╝███████║
 ╚═════╝╚═╝  ╚═╝╚═╝     ╚═╝╚═╝      ╚═════╝ ╚══════╝╚═╝     ╚═╝╚═╝  ╚═══╝╚═════╝ ╚══════╝
`
	version = "0.1.0"
)

var instanceProfile *profile.Profile

var rootCmd = &cobra.Command{
	Use:   "campusfinds",
	Short: "Campus marketplace with a built-in chat assistant",
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel(instanceProfile),
		}))
		slog.SetDefault(logger)

		instanceProfile.FromEnv()
		if err := instanceProfile.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		driver, err := db.NewDBDriver(instanceProfile)
		if err != nil {
			return fmt.Errorf("failed to create database driver: %w", err)
		}
		st := store.New(driver, instanceProfile)
		if err := st.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}

		srv, err := server.NewServer(ctx, instanceProfile, st, logger)
		if err != nil {
			return fmt.Errorf("failed to create server: %w", err)
		}

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			sig := <-sigCh
			logger.Info("received signal, shutting down", slog.String("signal", sig.String()))
			srv.Shutdown(ctx)
			cancel()
		}()

		fmt.Print(greetingBanner, "\n")
		logger.Info("server started",
			slog.String("version", version),
			slog.String("mode", instanceProfile.Mode),
			slog.String("addr", instanceProfile.Addr),
			slog.Int("port", instanceProfile.Port),
			slog.String("driver", instanceProfile.Driver),
		)

		if err := srv.Start(ctx); err != nil {
			cancel()
			return err
		}
		<-ctx.Done()
		return nil
	},
}

func logLevel(p *profile.Profile) slog.Level {
	if p.IsDev() {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	viper.SetEnvPrefix("campusfinds")
	viper.AutomaticEnv()

	rootCmd.PersistentFlags().String("mode", "demo", `mode of the server, can be "prod", "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of the server")
	rootCmd.PersistentFlags().Int("port", 8230, "port of the server")
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", `database driver, "sqlite" or "postgres"`)
	rootCmd.PersistentFlags().String("dsn", "", "database source name (aka. DSN)")
	rootCmd.PersistentFlags().String("instance-url", "", "public URL of this instance")

	for _, flag := range []string{"mode", "addr", "port", "data", "driver", "dsn", "instance-url"} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(err)
		}
	}

	cobra.OnInitialize(func() {
		instanceProfile = &profile.Profile{
			Mode:        viper.GetString("mode"),
			Addr:        viper.GetString("addr"),
			Port:        viper.GetInt("port"),
			Data:        viper.GetString("data"),
			Driver:      viper.GetString("driver"),
			DSN:         viper.GetString("dsn"),
			InstanceURL: viper.GetString("instance-url"),
			Version:     version,
		}
	})
}
