package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/harborview-partners/dealflow-cli/internal/model"
)

var (
	inviteDealID string
	inviteRole   string
	inviteBy     string
)

var inviteCmd = &cobra.Command{
	Use:   "invite",
	Short: "Manage collaborator invitations",
}

var inviteCreateCmd = &cobra.Command{
	Use:   "create <email>",
	Short: "Invite a collaborator to a deal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		role := model.InvitationRole(inviteRole)
		if !model.ValidInvitationRole(role) {
			return eris.Errorf("unknown role: %s", inviteRole)
		}

		s, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		inv := &model.Invitation{
			DealID:    inviteDealID,
			Email:     args[0],
			Role:      role,
			InvitedBy: inviteBy,
		}
		if err := s.CreateInvitation(cmd.Context(), inv); err != nil {
			return err
		}
		fmt.Printf("created invitation %s (%s)\n", inv.ID, inv.Status)
		return nil
	},
}

var inviteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List invitations",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		invs, err := s.ListInvitations(cmd.Context(), inviteDealID)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tEMAIL\tROLE\tSTATUS\tDEAL")
		for _, inv := range invs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", inv.ID, inv.Email, inv.Role, inv.Status, inv.DealID)
		}
		return tw.Flush()
	},
}

func resolveInvitation(cmd *cobra.Command, id string, next model.InvitationStatus) error {
	s, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	inv, err := s.GetInvitation(cmd.Context(), id)
	if err != nil {
		return err
	}
	if !inv.CanTransition(next) {
		return eris.Errorf("invitation %s cannot move from %s to %s", id, inv.Status, next)
	}
	return s.UpdateInvitationStatus(cmd.Context(), id, next)
}

var inviteApproveCmd = &cobra.Command{
	Use:   "approve <invitation-id>",
	Short: "Approve a pending invitation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return resolveInvitation(cmd, args[0], model.InvitationApproved)
	},
}

var inviteRevokeCmd = &cobra.Command{
	Use:   "revoke <invitation-id>",
	Short: "Revoke an invitation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return resolveInvitation(cmd, args[0], model.InvitationRevoked)
	},
}

func init() {
	inviteCmd.PersistentFlags().StringVar(&inviteDealID, "deal", "", "deal id")
	inviteCreateCmd.Flags().StringVar(&inviteRole, "role", string(model.RoleViewer), "viewer, analyst, or admin")
	inviteCreateCmd.Flags().StringVar(&inviteBy, "by", "", "inviter email")

	inviteCmd.AddCommand(inviteCreateCmd, inviteListCmd, inviteApproveCmd, inviteRevokeCmd)
	rootCmd.AddCommand(inviteCmd)
}
