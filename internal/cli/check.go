package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"preflight/internal/models"
)

func newCheckCommand(a *app) *cobra.Command {
	var (
		aircraftRef string
		pilotRef    string
		params      models.FlightParams
		airworthy   bool
		commit      bool
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Decide GO / NO-GO for a planned flight",
		Long: `Run the pre-flight checklist for an aircraft, a pilot and a planned load.

Every check runs even after one fails, so the report lists all problems at
once. The command exits non-zero when the verdict is NO-GO.

With --commit the planned duration is added to the aircraft's engine hours,
but only when the verdict is GO.`,
		Example: `  preflight check --aircraft RA-01772 --pilot "Ivan Ivanov" --fuel 100 --payload 150 --duration 60
  preflight check --aircraft RA-01772 --pilot "Ivan Ivanov" --fuel 100 --payload 150 --duration 60 --commit
  preflight check --aircraft RA-44028 --airworthiness -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			aircraftID, aircraftLabel, err := a.resolveAircraft(aircraftRef)
			if err != nil {
				return err
			}

			var view reportView
			if airworthy {
				view = newReportView(aircraftLabel, "", a.checker.CheckAirworthiness(aircraftID))
			} else {
				if err := params.Validate(); err != nil {
					return fmt.Errorf("invalid flight parameters: %w", err)
				}
				pilotID, pilotLabel, err := a.resolvePilot(pilotRef)
				if err != nil {
					return err
				}
				view = newReportView(aircraftLabel, pilotLabel, a.checker.CheckReadiness(aircraftID, pilotID, params))
				if commit && view.Report.IsReady {
					if err := a.fleet.CommitFlight(aircraftID, params.DurationMinutes); err != nil {
						return err
					}
					view.CommittedMinutes = params.DurationMinutes
				}
			}

			slog.Debug("Readiness check completed",
				"aircraft", aircraftLabel,
				"verdict", view.Verdict,
				"errors", len(view.Report.Errors),
				"warnings", len(view.Report.Warnings),
			)

			if err := renderReport(cmd.OutOrStdout(), a.cfg.Output, view); err != nil {
				return err
			}
			if !view.Report.IsReady {
				return ErrNotReady
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&aircraftRef, "aircraft", "", "aircraft registration or ID")
	cmd.Flags().StringVar(&pilotRef, "pilot", "", "pilot ID or full name")
	cmd.Flags().Float64Var(&params.FuelAmount, "fuel", 0, "fuel to load in litres")
	cmd.Flags().Float64Var(&params.PayloadWeight, "payload", 0, "crew, passengers and cargo in kg")
	cmd.Flags().IntVar(&params.DurationMinutes, "duration", 0, "planned flight time in minutes")
	cmd.Flags().BoolVar(&airworthy, "airworthiness", false, "check the aircraft only (engine hours and defects)")
	cmd.Flags().BoolVar(&commit, "commit", false, "log the flight against engine hours when the verdict is GO")
	_ = cmd.MarkFlagRequired("aircraft")
	cmd.MarkFlagsMutuallyExclusive("airworthiness", "commit")

	return cmd
}

// resolveAircraft accepts a registration or an aircraft ID. An unknown ID is
// passed through so the readiness check reports it.
func (a *app) resolveAircraft(ref string) (uuid.UUID, string, error) {
	ref = strings.TrimSpace(ref)
	if id, err := uuid.Parse(ref); err == nil {
		ac, err := a.db.AircraftRepository().FindByID(id)
		if err != nil {
			return id, ref, nil
		}
		return id, ac.Registration, nil
	}

	ac, err := a.db.AircraftRepository().FindByRegistration(ref)
	if errors.Is(err, models.ErrNotFound) {
		return uuid.Nil, "", fmt.Errorf("aircraft %s not found", ref)
	}
	if err != nil {
		return uuid.Nil, "", err
	}
	return ac.ID, ac.Registration, nil
}

// resolvePilot accepts a pilot ID or full name. A pilot that cannot be
// resolved yields uuid.Nil, which the readiness check reports as missing.
func (a *app) resolvePilot(ref string) (uuid.UUID, string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return uuid.Nil, "", nil
	}
	if id, err := uuid.Parse(ref); err == nil {
		p, err := a.db.PilotRepository().FindByID(id)
		if err != nil {
			return id, ref, nil
		}
		return id, p.FullName, nil
	}

	pilots, err := a.db.PilotRepository().List()
	if err != nil {
		return uuid.Nil, "", err
	}
	for _, p := range pilots {
		if strings.EqualFold(p.FullName, ref) {
			return p.ID, p.FullName, nil
		}
	}
	return uuid.Nil, ref, nil
}
