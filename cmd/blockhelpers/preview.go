package main

import (
	"errors"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/spf13/cobra"
)

// surveyIO holds the streams interactive prompts read from and write to.
type surveyIO struct {
	In  terminal.FileReader
	Out terminal.FileWriter
	Err terminal.FileWriter
}

var defaultSurveyIO = surveyIO{
	In:  os.Stdin,
	Out: os.Stdout,
	Err: os.Stderr,
}

func (s surveyIO) askOptions() []survey.AskOpt {
	return []survey.AskOpt{survey.WithStdio(s.In, s.Out, s.Err)}
}

// surveySelect prompts for one of names.
func surveySelect(stdio surveyIO) func(names []string) (string, error) {
	return func(names []string) (string, error) {
		var choice string
		prompt := &survey.Select{
			Message: "Template to render:",
			Options: names,
		}
		if err := survey.AskOne(prompt, &choice, stdio.askOptions()...); err != nil {
			return "", err
		}
		return choice, nil
	}
}

func newPreviewCmd(c *cli) *cobra.Command {
	var dataPath string

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Pick a template interactively and render it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			names, err := c.app.templateNames()
			if err != nil {
				return err
			}
			if len(names) == 0 {
				return errors.New("no templates found")
			}

			data, err := loadData(dataPath)
			if err != nil {
				return err
			}

			name, err := c.selectTemplate(names)
			if err != nil {
				if errors.Is(err, terminal.InterruptErr) {
					return nil
				}
				return err
			}
			return renderTo(cmd.OutOrStdout(), c.app, name, data, "")
		},
	}

	cmd.Flags().StringVar(&dataPath, "data", "", "YAML or JSON file with template data")
	return cmd
}
