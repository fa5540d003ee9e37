package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/contractkit/contractkit/internal/app/configuration"
	"github.com/contractkit/contractkit/internal/app/contractkit"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "contractkit",
		Short:         "Introspect, validate and mock declarative API contracts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML configuration file")
	root.AddCommand(serveCmd(), validateCmd(), mockCmd(), listCmd())

	if err := root.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func newEngine() (*contractkit.Engine, error) {
	config, err := configuration.Load(configPath)
	if err != nil {
		return nil, err
	}
	engine, err := contractkit.NewEngine(config)
	if err != nil {
		return nil, err
	}
	if err := engine.Initialize(); err != nil {
		return nil, err
	}
	return engine, nil
}

func serveCmd() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the contract capability API",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine()
			if err != nil {
				return err
			}
			server := configuration.ServeAPI(port, engine)
			log.Infof("capability API listening on :%d", port)

			c := make(chan os.Signal, 2)
			signal.Notify(c, os.Interrupt, syscall.SIGTERM)
			<-c

			if err := server.Close(); err != nil {
				return err
			}
			engine.Cleanup()
			return nil
		},
	}
	cmd.Flags().IntVar(&port, "port", 8080, "port for the capability API")
	return cmd
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <contract>...",
		Short: "Validate contract declarations",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine()
			if err != nil {
				return err
			}

			failed := false
			for _, ref := range args {
				checks := []struct {
					name   string
					result contractkit.ValidationResult
				}{
					{"contract", engine.ValidateContract(ref)},
					{"request", engine.ValidateRequestType(ref)},
					{"response", engine.ValidateResponseType(ref)},
				}
				for _, check := range checks {
					name, result := check.name, check.result
					for _, msg := range result.Errors {
						log.Errorf("%s [%s]: %s", ref, name, msg)
					}
					for _, msg := range result.Warnings {
						log.Warnf("%s [%s]: %s", ref, name, msg)
					}
					if !result.Success {
						failed = true
					}
				}
			}
			if failed {
				return errors.New("contract validation failed")
			}
			log.Infof("%d contract(s) valid", len(args))
			return nil
		},
	}
}

func mockCmd() *cobra.Command {
	var status int
	cmd := &cobra.Command{
		Use:   "mock <contract>",
		Short: "Generate a mock response payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine()
			if err != nil {
				return err
			}
			result := engine.GenerateMockResponse(args[0], status)
			if !result.Success {
				return errors.Errorf("unable to generate mock for %q", args[0])
			}
			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
	cmd.Flags().IntVar(&status, "status", contractkit.DefaultStatusCode, "status code to mock")
	return cmd
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List discovered contract files",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine()
			if err != nil {
				return err
			}
			files, err := engine.ContractFiles()
			if err != nil {
				return err
			}
			for _, file := range files {
				fmt.Println(file)
			}
			return nil
		},
	}
}
