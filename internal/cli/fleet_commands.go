package cli

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"preflight/internal/models"
)

func newSeedCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Replace all fleet data with a demonstration fleet",
		RunE: func(cmd *cobra.Command, _ []string) error {
			summary, err := a.fleet.SeedDemoData()
			if err != nil {
				return err
			}
			if a.cfg.Output == "json" {
				return renderJSON(cmd.OutOrStdout(), summary)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d models, %d aircraft, %d pilots and %d defects\n",
				summary.Models, summary.Aircraft, summary.Pilots, summary.Defects)
			return nil
		},
	}
}

func newClearCommand(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all aircraft, pilots and open defects",
		Long:  `Remove operational fleet data. Aircraft models and the defect catalog are kept.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear fleet data without --yes")
			}
			if err := a.fleet.ClearFleetData(); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Fleet data cleared")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm removal")
	return cmd
}

func newAircraftCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "aircraft",
		Aliases: []string{"ac"},
		Short:   "Manage aircraft",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List aircraft with their engine hours and status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := a.db.AircraftRepository().List()
			if err != nil {
				return err
			}
			views := make([]aircraftView, 0, len(list))
			for _, ac := range list {
				status, err := a.checker.AircraftStatus(ac)
				if err != nil {
					return fmt.Errorf("failed to determine status of %s: %w", ac.Registration, err)
				}
				views = append(views, aircraftView{Aircraft: ac, Status: status})
			}
			if a.cfg.Output == "json" {
				return renderJSON(cmd.OutOrStdout(), views)
			}
			rows := make([]table.Row, 0, len(views))
			for _, v := range views {
				rows = append(rows, table.Row{
					v.Registration, v.ModelName,
					fmt.Sprintf("%.1f", v.EngineHoursTotal),
					fmt.Sprintf("%.1f", v.EngineHoursService),
					fmt.Sprintf("%.1f", v.HoursRemaining()),
					v.Status,
					v.ID,
				})
			}
			renderTable(cmd.OutOrStdout(), table.Row{"Registration", "Model", "Engine h", "Next service", "Remaining", "Status", "ID"}, rows)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "models",
		Short: "List aircraft models and their performance data",
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := a.db.ModelRepository().List()
			if err != nil {
				return err
			}
			if a.cfg.Output == "json" {
				return renderJSON(cmd.OutOrStdout(), list)
			}
			rows := make([]table.Row, 0, len(list))
			for _, m := range list {
				rows = append(rows, table.Row{m.Name, m.MaxTakeoffWeight, m.EmptyWeight, m.FuelCapacity, m.FuelConsumption, m.ID})
			}
			renderTable(cmd.OutOrStdout(), table.Row{"Model", "MTOW kg", "Empty kg", "Fuel L", "Burn L/h", "ID"}, rows)
			return nil
		},
	})

	var (
		registration string
		modelRef     string
		hoursTotal   float64
		nextService  float64
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Register an aircraft",
		RunE: func(cmd *cobra.Command, _ []string) error {
			modelID, err := a.resolveModel(modelRef)
			if err != nil {
				return err
			}
			ac := &models.Aircraft{
				ModelID:            modelID,
				Registration:       registration,
				EngineHoursTotal:   hoursTotal,
				EngineHoursService: nextService,
			}
			if err := a.fleet.RegisterAircraft(ac); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Registered %s (%s)\n", ac.Registration, ac.ID)
			return nil
		},
	}
	add.Flags().StringVar(&registration, "registration", "", "registration mark, e.g. RA-01772")
	add.Flags().StringVar(&modelRef, "model", "", "aircraft model name or ID")
	add.Flags().Float64Var(&hoursTotal, "hours", 0, "engine hours flown")
	add.Flags().Float64Var(&nextService, "next-service", 0, "engine hours at which the next service is due")
	_ = add.MarkFlagRequired("registration")
	_ = add.MarkFlagRequired("model")
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <registration|id>",
		Short: "Remove an aircraft and its open defects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, label, err := a.resolveAircraft(args[0])
			if err != nil {
				return err
			}
			if err := a.fleet.DeleteAircraft(id); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", label)
			return nil
		},
	})

	return cmd
}

func newPilotCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pilot",
		Short: "Manage pilots",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List pilots with their currency dates and type ratings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pilots, err := a.db.PilotRepository().List()
			if err != nil {
				return err
			}
			if a.cfg.Output == "json" {
				return renderJSON(cmd.OutOrStdout(), pilots)
			}

			catalog, err := a.db.ModelRepository().List()
			if err != nil {
				return err
			}
			names := make(map[uuid.UUID]string, len(catalog))
			for _, m := range catalog {
				names[m.ID] = m.Name
			}

			rows := make([]table.Row, 0, len(pilots))
			for _, p := range pilots {
				ratings := make([]string, 0, len(p.RatedModels))
				for _, id := range p.RatedModels {
					ratings = append(ratings, names[id])
				}
				slices.Sort(ratings)
				rows = append(rows, table.Row{
					p.FullName,
					p.LicenseExpiry.Format(models.DateLayout),
					p.MedicalExpiry.Format(models.DateLayout),
					strings.Join(ratings, ", "),
					p.ID,
				})
			}
			renderTable(cmd.OutOrStdout(), table.Row{"Name", "License", "Medical", "Type ratings", "ID"}, rows)
			return nil
		},
	})

	var (
		name    string
		license string
		medical string
		ratings []string
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Register a pilot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := &models.Pilot{FullName: name}

			var err error
			if p.LicenseExpiry, err = time.Parse(models.DateLayout, license); err != nil {
				return fmt.Errorf("invalid license expiry %q: %w", license, err)
			}
			if p.MedicalExpiry, err = time.Parse(models.DateLayout, medical); err != nil {
				return fmt.Errorf("invalid medical expiry %q: %w", medical, err)
			}
			for _, ref := range ratings {
				id, err := a.resolveModel(ref)
				if err != nil {
					return err
				}
				p.RatedModels = append(p.RatedModels, id)
			}

			if err := a.fleet.RegisterPilot(p); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Registered %s (%s)\n", p.FullName, p.ID)
			return nil
		},
	}
	add.Flags().StringVar(&name, "name", "", "full name")
	add.Flags().StringVar(&license, "license", "", "license expiry date (YYYY-MM-DD)")
	add.Flags().StringVar(&medical, "medical", "", "medical certificate expiry date (YYYY-MM-DD)")
	add.Flags().StringSliceVar(&ratings, "rating", nil, "aircraft model name or ID the pilot is rated for (repeatable)")
	_ = add.MarkFlagRequired("name")
	_ = add.MarkFlagRequired("license")
	_ = add.MarkFlagRequired("medical")
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a pilot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid pilot ID %q: %w", args[0], err)
			}
			if err := a.fleet.DeletePilot(id); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted pilot %s\n", id)
			return nil
		},
	})

	return cmd
}

func newDefectCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "defect",
		Short: "Report and resolve aircraft defects",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "types",
		Short: "List the defect catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			types, err := a.db.DefectRepository().ListTypes()
			if err != nil {
				return err
			}
			if a.cfg.Output == "json" {
				return renderJSON(cmd.OutOrStdout(), types)
			}
			rows := make([]table.Row, 0, len(types))
			for _, dt := range types {
				rows = append(rows, table.Row{dt.Severity, dt.Description, dt.ID})
			}
			renderTable(cmd.OutOrStdout(), table.Row{"Severity", "Description", "ID"}, rows)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list <registration|id>",
		Short: "List the open defects of an aircraft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, _, err := a.resolveAircraft(args[0])
			if err != nil {
				return err
			}
			defects, err := a.db.ListActiveDefectsForAircraft(id)
			if err != nil {
				return err
			}
			if a.cfg.Output == "json" {
				return renderJSON(cmd.OutOrStdout(), defects)
			}
			rows := make([]table.Row, 0, len(defects))
			for _, d := range defects {
				rows = append(rows, table.Row{d.Severity, d.Description, d.CreatedAt.Format(time.DateTime), d.ID})
			}
			renderTable(cmd.OutOrStdout(), table.Row{"Severity", "Description", "Reported", "ID"}, rows)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "report <registration|id> <defect-type-id>",
		Short: "Open a defect on an aircraft",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			aircraftID, label, err := a.resolveAircraft(args[0])
			if err != nil {
				return err
			}
			typeID, err := uuid.Parse(args[1])
			if err != nil {
				return fmt.Errorf("invalid defect type ID %q: %w", args[1], err)
			}
			d, err := a.fleet.ReportDefect(aircraftID, typeID)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Reported defect %s on %s\n", d.ID, label)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "resolve <defect-id>",
		Short: "Close an open defect",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid defect ID %q: %w", args[0], err)
			}
			if err := a.fleet.ResolveDefect(id); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Resolved defect %s\n", id)
			return nil
		},
	})

	return cmd
}

func newFlightCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flight",
		Short: "Record flights",
	}

	var minutes int
	logCmd := &cobra.Command{
		Use:   "log <registration|id>",
		Short: "Add flown time to an aircraft's engine hours",
		Long: `Add flown time to an aircraft's engine hours.

A grounded aircraft cannot log a flight: its airworthiness report is printed
and nothing is written. Use "check --commit" to log a flight after a full
readiness check.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, label, err := a.resolveAircraft(args[0])
			if err != nil {
				return err
			}
			if report := a.checker.CheckAirworthiness(id); !report.IsReady {
				if err := renderReport(cmd.OutOrStdout(), a.cfg.Output, newReportView(label, "", report)); err != nil {
					return err
				}
				return ErrNotReady
			}
			if err := a.fleet.CommitFlight(id, minutes); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Logged %d min on %s\n", minutes, label)
			return nil
		},
	}
	logCmd.Flags().IntVar(&minutes, "minutes", 0, "flight time in minutes")
	_ = logCmd.MarkFlagRequired("minutes")
	cmd.AddCommand(logCmd)

	return cmd
}

func newMaintenanceCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "maintenance <registration|id>",
		Short: "Record an engine service, granting 100 more engine hours",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, label, err := a.resolveAircraft(args[0])
			if err != nil {
				return err
			}
			if err := a.fleet.PerformEngineMaintenance(id); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Engine maintenance recorded for %s\n", label)
			return nil
		},
	}
}

// resolveModel accepts an aircraft model ID or its exact name
func (a *app) resolveModel(ref string) (uuid.UUID, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return id, nil
	}
	catalog, err := a.db.ModelRepository().List()
	if err != nil {
		return uuid.Nil, err
	}
	for _, m := range catalog {
		if strings.EqualFold(m.Name, ref) {
			return m.ID, nil
		}
	}
	return uuid.Nil, fmt.Errorf("aircraft model %q not found", ref)
}
