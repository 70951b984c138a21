package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/insighter-hq/researcher/internal/filter"
	"github.com/insighter-hq/researcher/internal/insight"
	"github.com/insighter-hq/researcher/internal/model"
)

var (
	researchProfilePath string
	researchFilterPath  string
	researchJSON        bool
)

var researchCmd = &cobra.Command{
	Use:   "research",
	Short: "Run one research pass for a profile file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		profile, filters, err := loadResearchInputs(researchProfilePath, researchFilterPath)
		if err != nil {
			return err
		}

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		var companies []*model.CompanyAnalysis
		var insights string
		for ev := range env.Runner.Run(ctx, profile, filters) {
			switch ev.Type {
			case model.EventStatus:
				fmt.Fprintln(os.Stderr, ev.Message)
			case model.EventCompanyResult:
				companies = append(companies, ev.Company)
				if researchJSON {
					data, err := json.Marshal(ev.Company)
					if err != nil {
						return eris.Wrap(err, "encode company result")
					}
					fmt.Println(string(data))
				}
			case model.EventMarketInsights:
				insights = ev.Insights
			case model.EventError:
				return eris.New(ev.Message)
			}
		}
		if err := ctx.Err(); err != nil {
			return eris.Wrap(err, "research interrupted")
		}

		if !researchJSON {
			fmt.Println(insight.ComparisonTable(companies))
			if insights != "" {
				fmt.Println()
				fmt.Println(insights)
			}
		}
		return nil
	},
}

// loadResearchInputs reads the search profile and the optional filter
// criteria from YAML files.
func loadResearchInputs(profilePath, filterPath string) (model.SearchProfile, *filter.Config, error) {
	var profile model.SearchProfile

	raw, err := os.ReadFile(profilePath)
	if err != nil {
		return profile, nil, eris.Wrap(err, "read profile file")
	}
	if err := yaml.Unmarshal(raw, &profile); err != nil {
		return profile, nil, eris.Wrap(err, "parse profile file")
	}
	if len(profile.IncludedIndustries) == 0 && len(profile.RequiredKeywords) == 0 {
		return profile, nil, eris.New("profile needs included_industries or required_keywords")
	}

	var filters *filter.Config
	if filterPath != "" {
		raw, err := os.ReadFile(filterPath)
		if err != nil {
			return profile, nil, eris.Wrap(err, "read filter file")
		}
		var fc filter.Config
		if err := yaml.Unmarshal(raw, &fc); err != nil {
			return profile, nil, eris.Wrap(err, "parse filter file")
		}
		filters = &fc
	}

	return profile, filters, nil
}

func init() {
	researchCmd.Flags().StringVarP(&researchProfilePath, "profile", "p", "profile.yaml", "search profile YAML file")
	researchCmd.Flags().StringVarP(&researchFilterPath, "filters", "f", "", "filter criteria YAML file (optional)")
	researchCmd.Flags().BoolVar(&researchJSON, "json", false, "print company results as JSON lines")
	rootCmd.AddCommand(researchCmd)
}
