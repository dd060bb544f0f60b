package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/torfstack/revsync/internal/config"
	"github.com/torfstack/revsync/internal/logging"
	"github.com/torfstack/revsync/internal/service"
)

var version = "dev"

func main() {
	var rootCmd = &cobra.Command{
		Use:          "revsync",
		Short:        "Sync an app data file with a WebDAV store",
		SilenceUsage: true,
	}

	var (
		debug      bool
		configPath string
		force      bool
	)
	rootCmd.PersistentFlags().
		BoolVarP(&debug, "debug", "d", false, "Enable debug output")
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", config.FilePath(), "Config file")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		logging.SetDebug(debug)
	}

	withService := func(run func(ctx context.Context, srv *service.Service) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if !cfg.Remote.Complete() {
				return fmt.Errorf("remote is not configured completely, run 'revsync setup' or edit '%s'", configPath)
			}
			srv, err := service.NewService(cmd.Context(), config.NewSource(cfg), service.WithUserAgent("revsync/"+version))
			if err != nil {
				return err
			}
			defer srv.Close()
			return run(cmd.Context(), srv)
		}
	}

	var setupCmd = &cobra.Command{
		Use:   "setup",
		Short: "Create the config file interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.GetInteractive()
			if err != nil {
				return err
			}
			fmt.Printf("Config at %s, syncing %s with %s%s\n",
				config.FilePath(), cfg.DataFile, cfg.Remote.BaseURL, cfg.Remote.SyncFilePath)
			return nil
		},
	}

	var statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Compare local, remote and last synced revision",
		RunE: withService(func(ctx context.Context, srv *service.Service) error {
			status, err := srv.Status(ctx)
			if err != nil {
				return err
			}
			printStatus(status)
			return nil
		}),
	}

	var pushCmd = &cobra.Command{
		Use:   "push",
		Short: "Upload the local data file",
		RunE: withService(func(ctx context.Context, srv *service.Service) error {
			rev, err := srv.Push(ctx, force)
			if err != nil {
				return err
			}
			fmt.Printf("Pushed revision %s\n", rev)
			return nil
		}),
	}
	pushCmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite remote data")

	var pullCmd = &cobra.Command{
		Use:   "pull",
		Short: "Replace the local data file with the remote data",
		RunE: withService(func(ctx context.Context, srv *service.Service) error {
			file, err := srv.Pull(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Pulled %s into %s\n", humanize.Bytes(uint64(len(file.Content))), file.Path)
			return nil
		}),
	}

	var syncCmd = &cobra.Command{
		Use:   "sync",
		Short: "Push or pull, whichever side changed",
		RunE: withService(func(ctx context.Context, srv *service.Service) error {
			action, err := srv.Sync(ctx, force)
			if err != nil {
				return err
			}
			fmt.Printf("Sync finished: %s\n", action)
			return nil
		}),
	}
	syncCmd.Flags().BoolVarP(&force, "force", "f", false, "Push local data on conflict")

	var daemonCmd = &cobra.Command{
		Use:   "daemon",
		Short: "Keep syncing in the background",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			srv, err := service.NewService(cmd.Context(), config.NewSource(cfg), service.WithUserAgent("revsync/"+version))
			if err != nil {
				return err
			}
			defer srv.Close()
			logging.Infof("Syncing %s every %s", cfg.DataFile, cfg.SyncInterval)
			return srv.RunDaemon(cmd.Context(), configPath)
		},
	}

	rootCmd.AddCommand(setupCmd, statusCmd, pushCmd, pullCmd, syncCmd, daemonCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func loadConfig(path string) (config.Config, error) {
	if path == config.FilePath() {
		return config.Get()
	}
	return config.Load(path)
}

func printStatus(status *service.Status) {
	fmt.Printf("Remote path:     %s\n", status.SyncPath)
	if status.Remote.NoRemoteData {
		fmt.Println("Remote revision: none (nothing uploaded yet)")
	} else {
		updated := time.UnixMilli(status.Remote.ClientUpdateMs)
		fmt.Printf("Remote revision: %s (updated %s)\n", status.Remote.Rev, humanize.Time(updated))
	}
	if status.Stored != nil {
		fmt.Printf("Last synced:     %s (%s)\n", status.Stored.Revision, humanize.Time(status.Stored.SyncedAt))
	} else {
		fmt.Println("Last synced:     never")
	}
	if status.Local != nil {
		fmt.Printf("Local file:      %s, %s, modified %s\n",
			status.Local.Path, humanize.Bytes(uint64(len(status.Local.Content))), humanize.Time(status.Local.ModTime))
	} else {
		fmt.Println("Local file:      missing")
	}
	if status.InSync() {
		fmt.Println("In sync.")
	}
}
