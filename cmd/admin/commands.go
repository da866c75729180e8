package main

import (
	"fmt"
	"strconv"
	"strings"

	"igire/backend/internal/complaint"
	"igire/backend/internal/insights"
	"igire/backend/internal/models"

	"github.com/spf13/cobra"
)

func newSetStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set-status <complaint-id|tracking-code> <submitted|in-progress|resolved>",
		Short: "Move a complaint forward in its lifecycle",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status := models.Status(strings.ToLower(args[1]))
			if !status.Valid() {
				return fmt.Errorf("unknown status %q", args[1])
			}
			if err := ctx.open(); err != nil {
				return err
			}

			updated, err := ctx.complaints().Update(cmd.Context(), complaintKey(args[0]), complaint.Update{Status: &status})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Complaint %s is now %s\n", updated.TrackingCode, updated.Status)
			return nil
		},
	}
}

func newAssignCommand(ctx *commandContext) *cobra.Command {
	var unassign bool
	cmd := &cobra.Command{
		Use:   "assign <complaint-id|tracking-code> [institution-id]",
		Short: "Route a complaint to an institution",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if unassign == (len(args) == 2) {
				return fmt.Errorf("give an institution id or --clear")
			}
			agency := ""
			if !unassign {
				agency = args[1]
			}
			if err := ctx.open(); err != nil {
				return err
			}

			updated, err := ctx.complaints().Update(cmd.Context(), complaintKey(args[0]), complaint.Update{AssignedAgencyID: &agency})
			if err != nil {
				return err
			}
			if updated.AssignedAgencyID == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Complaint %s is unassigned\n", updated.TrackingCode)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Complaint %s assigned to %s\n", updated.TrackingCode, *updated.AssignedAgencyID)
			return nil
		},
	}
	cmd.Flags().BoolVar(&unassign, "clear", false, "Remove the current assignment")
	return cmd
}

func newAwardCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "award <user-id> <points>",
		Short: "Adjust a user's points balance (negative values deduct)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			delta, err := strconv.Atoi(args[1])
			if err != nil || delta == 0 {
				return fmt.Errorf("points must be a non-zero integer")
			}
			if err := ctx.open(); err != nil {
				return err
			}

			if err := ctx.store.AddUserPoints(cmd.Context(), args[0], delta); err != nil {
				return err
			}
			balance, err := ctx.rewards().Balance(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User %s now has %d points\n", args[0], balance)
			return nil
		},
	}
}

func newAddInstitutionCommand(ctx *commandContext) *cobra.Command {
	var (
		inst         models.Institution
		telegramChat int64
	)
	cmd := &cobra.Command{
		Use:   "add-institution",
		Short: "Register an institution that complaints can be routed to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inst.Name = strings.TrimSpace(inst.Name)
			inst.Department = strings.ToLower(strings.TrimSpace(inst.Department))
			if inst.Name == "" || inst.Department == "" {
				return fmt.Errorf("--name and --department are required")
			}
			inst.Role = models.RoleInstitution
			if cmd.Flags().Changed("telegram-chat") {
				inst.TelegramChatID = &telegramChat
			}
			if err := ctx.open(); err != nil {
				return err
			}

			if err := ctx.store.CreateInstitution(cmd.Context(), &inst); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Institution %s created with id %s\n", inst.Name, inst.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&inst.Name, "name", "", "Institution name, e.g. WASAC")
	cmd.Flags().StringVar(&inst.Department, "department", "", "Category it handles: water, sanitation, roads, electricity, other")
	cmd.Flags().StringVar(&inst.Email, "email", "", "Contact email")
	cmd.Flags().StringVar(&inst.Phone, "phone", "", "Contact phone")
	cmd.Flags().Int64Var(&telegramChat, "telegram-chat", 0, "Telegram chat id for assignment notifications")
	return cmd
}

func newPromoteCommand(ctx *commandContext) *cobra.Command {
	var (
		role          string
		institutionID string
	)
	cmd := &cobra.Command{
		Use:   "promote <user-id>",
		Short: "Give a user an admin or institution staff role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			newRole := models.Role(strings.ToLower(role))
			if !newRole.Valid() {
				return fmt.Errorf("unknown role %q", role)
			}
			if newRole == models.RoleInstitution && institutionID == "" {
				return fmt.Errorf("--institution is required for institution staff")
			}
			if err := ctx.open(); err != nil {
				return err
			}

			user, err := ctx.store.GetUserByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			user.Role = newRole
			user.InstitutionID = nil
			if newRole == models.RoleInstitution {
				if _, err := ctx.store.GetInstitution(cmd.Context(), institutionID); err != nil {
					return fmt.Errorf("institution %s: %w", institutionID, err)
				}
				user.InstitutionID = &institutionID
			}
			if err := ctx.store.UpdateUser(cmd.Context(), user); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User %s is now %s\n", user.ID, user.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", string(models.RoleAdmin), "Role to grant: admin, institution or user")
	cmd.Flags().StringVar(&institutionID, "institution", "", "Institution id for institution staff")
	return cmd
}

func newCompleteRedemptionCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "complete-redemption <redemption-id>",
		Short: "Mark a reward as delivered",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ctx.open(); err != nil {
				return err
			}
			r, err := ctx.rewards().Complete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Redemption %s (%s %d RWF) completed\n", r.ID, r.Type, r.AmountRWF)
			return nil
		},
	}
}

func newGenerateInsightsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "generate-insights",
		Short: "Derive predictions from the last two weeks of complaints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ctx.open(); err != nil {
				return err
			}
			predictions, err := insights.NewGenerator(ctx.store, ctx.logger).Generate(cmd.Context())
			if err != nil {
				return err
			}
			for _, p := range predictions {
				fmt.Fprintf(cmd.OutOrStdout(), "%3d%%  %s\n", p.Probability, p.Issue)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d predictions stored\n", len(predictions))
			return nil
		},
	}
}

func complaintKey(s string) string {
	if strings.HasPrefix(strings.ToUpper(s), "IG-") {
		return strings.ToUpper(s)
	}
	return s
}

