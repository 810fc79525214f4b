package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tanguofu/openclaw/internal/config"
	"github.com/tanguofu/openclaw/internal/store"
	"github.com/tanguofu/openclaw/internal/store/sqlite"
)

func pairingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pairing",
		Short: "Manage DM pairing requests",
		Long:  "List, approve, or revoke pairing requests from direct-message senders. Approving a request promotes the sender into the channel allow-list.",
	}
	cmd.AddCommand(pairingListCmd())
	cmd.AddCommand(pairingApproveCmd())
	cmd.AddCommand(pairingRevokeCmd())
	return cmd
}

func openStores() (*store.Stores, func(), error) {
	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	stores, db, err := sqlite.NewStores(config.ExpandHome(cfg.Store.Path))
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	return stores, func() { db.Close() }, nil
}

func pairingListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List pending pairing requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			stores, closeDB, err := openStores()
			if err != nil {
				return err
			}
			defer closeDB()

			requests, err := stores.Pairing.List(context.Background())
			if err != nil {
				return err
			}
			if len(requests) == 0 {
				fmt.Println("No pending pairing requests.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CODE\tCHANNEL\tSENDER\tNAME\tREQUESTED")
			for _, r := range requests {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					r.Code, r.Channel, r.SenderID, r.SenderName, r.CreatedAt.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}
}

func pairingApproveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "approve <code>",
		Short: "Approve a pairing request by code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stores, closeDB, err := openStores()
			if err != nil {
				return err
			}
			defer closeDB()

			req, err := stores.Pairing.Approve(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Approved %s (%s) on %s.\n", req.SenderID, req.SenderName, req.Channel)
			return nil
		},
	}
}

func pairingRevokeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <channel> <sender-id>",
		Short: "Revoke a pending pairing request",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			stores, closeDB, err := openStores()
			if err != nil {
				return err
			}
			defer closeDB()

			if err := stores.Pairing.Revoke(context.Background(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("Revoked pairing request for %s on %s.\n", args[1], args[0])
			return nil
		},
	}
}
