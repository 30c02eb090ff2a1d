package cli

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/symptom-triage-engine/internal/api"
	triagemcp "github.com/symptom-triage-engine/internal/mcp"
	"github.com/symptom-triage-engine/internal/setup"
)

func (r *runtime) newServeCommand() *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := r.loadApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if cmd.Flags().Changed("host") {
				a.Config.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				a.Config.Server.Port = port
			}

			server, err := api.NewServer(a)
			if err != nil {
				return fmt.Errorf("failed to create server: %w", err)
			}

			a.Logger.WithFields(logrus.Fields{
				"host":    a.Config.Server.Host,
				"port":    a.Config.Server.Port,
				"storage": a.Config.Storage.Backend,
			}).Info("Starting HTTP API")
			return server.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "override server.host")
	cmd.Flags().IntVar(&port, "port", 0, "override server.port")
	return cmd
}

func (r *runtime) newMCPCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the triage tools over MCP stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := r.loadApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			server, err := triagemcp.NewServer(a)
			if err != nil {
				return err
			}
			return server.Start(ctx)
		},
	}
}

func (r *runtime) newSetupCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Register the MCP server with Claude Desktop",
	}
	cmd.PersistentFlags().StringVar(&configPath, "desktop-config", "", "Claude Desktop config file (default is the platform location)")

	var (
		binary  string
		dataDir string
	)
	install := &cobra.Command{
		Use:   "claude-desktop",
		Short: "Add or update the symptom-triage entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := setup.Configure(setup.Options{
				ConfigPath: configPath,
				BinaryPath: binary,
				DataDir:    dataDir,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(r.stdout, "Registered %s in %s\nRestart Claude Desktop to load it.\n", setup.ServerName, path)
			return nil
		},
	}
	install.Flags().StringVar(&binary, "binary", "", "path to the triage-mcp binary (default searches PATH)")
	install.Flags().StringVar(&dataDir, "data-dir", "", "history directory passed as "+setup.DataDirEnv)

	status := &cobra.Command{
		Use:   "status",
		Short: "Show the current registration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := setup.GetStatus(configPath)
			if err != nil {
				return err
			}
			if r.jsonOutput {
				return r.printJSON(st)
			}
			fmt.Fprintf(r.stdout, "Config:     %s\n", st.ConfigPath)
			fmt.Fprintf(r.stdout, "Registered: %t\n", st.Configured)
			if st.Configured {
				fmt.Fprintf(r.stdout, "Binary:     %s\n", st.ServerPath)
				if st.DataDir != "" {
					fmt.Fprintf(r.stdout, "Data dir:   %s\n", st.DataDir)
				}
			}
			for _, issue := range st.Issues {
				fmt.Fprintf(r.stdout, "! %s\n", issue)
			}
			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "remove",
		Short: "Remove the symptom-triage entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := setup.Remove(configPath)
			if err != nil {
				return err
			}
			if !removed {
				fmt.Fprintln(r.stdout, "Nothing to remove.")
				return nil
			}
			fmt.Fprintf(r.stdout, "Removed %s\n", setup.ServerName)
			return nil
		},
	}

	cmd.AddCommand(install, status, remove)
	return cmd
}
