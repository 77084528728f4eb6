package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"lunchsync/internal/model"
)

var syncFilters struct {
	menuType  string
	weekRange string
}

var syncCmd = &cobra.Command{
	Use:   "sync <instance>",
	Short: "Synchronize orders of every configured sheet for one instance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := cfg.Instance(args[0]); err != nil {
			return err
		}
		filters := model.SyncFilters{
			MenuType:  model.MenuType(strings.ToLower(syncFilters.menuType)),
			WeekRange: syncFilters.weekRange,
		}
		if filters.MenuType != "" && filters.MenuType != model.MenuTypeDiet && filters.MenuType != model.MenuTypeRegular {
			return errors.New("menu-type must be diet or regular")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg, false)
		if err != nil {
			return err
		}
		defer a.Close()

		report, err := a.runner.Run(ctx, args[0], filters)
		if err != nil {
			return err
		}
		for _, w := range report.Weeks {
			slog.Info("week synced", "week", w.Label, "created", w.Created, "existing", w.Existing, "failed", w.Failed, "skipped", w.Skipped, "error", w.Error)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d orders created\n", report.RunID, report.Created())
		return nil
	},
}

func init() {
	syncCmd.Flags().StringVar(&syncFilters.menuType, "menu-type", "", "only sync weeks of this menu type (diet or regular)")
	syncCmd.Flags().StringVar(&syncFilters.weekRange, "week-range", "", "only sync the week with this label")
}
