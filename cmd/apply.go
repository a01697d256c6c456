package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/metrolinq/hostcfgd/internal/comm"
	"github.com/metrolinq/hostcfgd/internal/errors"
	"github.com/metrolinq/hostcfgd/internal/snapshot"
)

var applyCmd = &cobra.Command{
	Use:   "apply <snapshot.yaml>",
	Short: "Submit a snapshot document to a running daemon",
	Long: `apply reads a YAML snapshot document and submits each domain it
contains to the daemon over the comm socket, in a fixed order: time sync,
name resolution, authentication, interfaces, neighbors, scalar values.

Intended for provisioning scripts and for exercising a daemon by hand;
the regular configuration source speaks the socket protocol directly.`,
	Args: cobra.ExactArgs(1),
	RunE: runApply,
}

func init() {
	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	if err := setupLogging(); err != nil {
		return err
	}

	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return errors.Wrap(errors.ExitConfigError, "reading snapshot document", err)
	}
	var doc snapshot.Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return errors.Wrap(errors.ExitConfigError, "parsing snapshot document", err)
	}

	type call struct {
		action  string
		payload any
	}
	var calls []call
	if doc.NTP != nil {
		calls = append(calls, call{comm.ActionSetNTP, doc.NTP})
	}
	if doc.DNS != nil {
		calls = append(calls, call{comm.ActionSetDNS, doc.DNS})
	}
	if doc.Auth != nil {
		calls = append(calls, call{comm.ActionSetAuth, doc.Auth})
	}
	if doc.Interfaces != nil {
		calls = append(calls, call{comm.ActionSetInterfaces, doc.Interfaces})
	}
	if doc.Neighbors != nil {
		calls = append(calls, call{comm.ActionSetNeighbors, doc.Neighbors})
	}
	for _, value := range doc.Values {
		calls = append(calls, call{comm.ActionSetValue, value})
	}
	if len(calls) == 0 {
		return errors.New(errors.ExitConfigError, "snapshot document contains no domains")
	}

	client := comm.NewClient(settings.SocketPath)
	out := cmd.OutOrStdout()
	for _, c := range calls {
		resp, err := client.Call(cmd.Context(), c.action, "", c.payload)
		if err != nil {
			return errors.SocketError(err)
		}
		if !resp.OK {
			return errors.New(errors.ExitGeneralError, fmt.Sprintf("%s rejected: %s", c.action, resp.Error))
		}
		if resp.Reason != "" {
			fmt.Fprintf(out, "%s: %s (%s)\n", c.action, resp.Status, resp.Reason)
		} else {
			fmt.Fprintf(out, "%s: %s\n", c.action, resp.Status)
		}
	}

	return nil
}
