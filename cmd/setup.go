package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"vidrop/infrastructure/config"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

// Prompter interface for interactive prompts (allows mocking in tests)
type Prompter interface {
	Input(message string, defaultValue string) (string, error)
	Confirm(message string, defaultValue bool) (bool, error)
}

// SurveyPrompter implements Prompter using the survey library
type SurveyPrompter struct{}

func (p *SurveyPrompter) Input(message string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

func (p *SurveyPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	result := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}
	return result, nil
}

// DefaultPrompter is the prompter used in production
var DefaultPrompter Prompter = &SurveyPrompter{}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create configuration file interactively",
	Long: `Prompts for configuration values and creates config.yaml.

This command guides you through the default frame range, matching
thresholds, decoder, ffmpeg location, output naming and batch settings.
Press enter to keep the suggested value.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	path := cfgFile
	if path == "" {
		path = config.DefaultPath
	}
	return RunSetupWithPrompter(DefaultPrompter, path, os.Stdout)
}

// RunSetupWithPrompter runs the setup with a given prompter (for testing)
func RunSetupWithPrompter(prompter Prompter, configPath string, output OutputWriter) error {
	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		overwrite, err := prompter.Confirm("config.yaml already exists. Overwrite?", false)
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if !overwrite {
			fmt.Fprintln(output, "Setup cancelled.")
			return nil
		}
	}

	fmt.Fprintln(output, titleStyle.Render("Welcome to vidrop setup!"))
	fmt.Fprintln(output)

	cfg := config.Default()

	if err := promptScan(prompter, cfg); err != nil {
		return err
	}

	if err := promptTools(prompter, cfg); err != nil {
		return err
	}

	if err := promptOutput(prompter, cfg); err != nil {
		return err
	}

	if err := promptBatch(prompter, cfg); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := config.Save(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Fprintln(output)
	fmt.Fprintln(output, successStyle.Render(fmt.Sprintf("Configuration saved to %s", configPath)))
	return nil
}

func promptInt(prompter Prompter, message string, defaultValue int) (int, error) {
	answer, err := prompter.Input(message, strconv.Itoa(defaultValue))
	if err != nil {
		return 0, fmt.Errorf("prompt cancelled")
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(answer)
	if err != nil {
		return 0, fmt.Errorf("%q is not a whole number", answer)
	}
	return n, nil
}

func promptString(prompter Prompter, message, defaultValue string) (string, error) {
	answer, err := prompter.Input(message, defaultValue)
	if err != nil {
		return "", fmt.Errorf("prompt cancelled")
	}
	if answer = strings.TrimSpace(answer); answer == "" {
		return defaultValue, nil
	}
	return answer, nil
}

func promptScan(prompter Prompter, cfg *config.Config) error {
	frames, err := promptString(prompter, "Default frame range (start,stop,step)?", "0,-1,1")
	if err != nil {
		return err
	}
	rng, err := ParseFrames(frames)
	if err != nil {
		return err
	}
	cfg.Scan.Frames = config.FramesConfig{Start: rng.Start, Stop: rng.Stop, Step: rng.Step}

	ratio, err := promptString(prompter, "Hit ratio (share of differing pixels still counted as a match)?",
		strconv.FormatFloat(cfg.Scan.HitRatio, 'g', -1, 64))
	if err != nil {
		return err
	}
	if cfg.Scan.HitRatio, err = strconv.ParseFloat(ratio, 64); err != nil {
		return fmt.Errorf("%q is not a number", ratio)
	}

	if cfg.Scan.ScoreTolerance, err = promptInt(prompter, "Pixel difference tolerance?", cfg.Scan.ScoreTolerance); err != nil {
		return err
	}

	if cfg.Scan.QuantizeStep, err = promptInt(prompter, "Grayscale quantize step?", cfg.Scan.QuantizeStep); err != nil {
		return err
	}

	decoder, err := promptString(prompter, "Frame decoder (ffmpeg or gocv)?", cfg.Scan.Decoder)
	if err != nil {
		return err
	}
	cfg.Scan.Decoder = strings.ToLower(decoder)

	return nil
}

func promptTools(prompter Prompter, cfg *config.Config) error {
	path, err := promptString(prompter, "Path to the ffmpeg executable?", cfg.FFmpeg.Path)
	if err != nil {
		return err
	}
	cfg.FFmpeg.Path = path

	level, err := promptString(prompter, "Log level (debug, info, warn, error, off)?", cfg.Log.Level)
	if err != nil {
		return err
	}
	cfg.Log.Level = strings.ToLower(level)
	return nil
}

func promptOutput(prompter Prompter, cfg *config.Config) error {
	suffix, err := promptString(prompter, "Suffix for trimmed videos?", cfg.Output.Suffix)
	if err != nil {
		return err
	}
	cfg.Output.Suffix = suffix

	overwrite, err := prompter.Confirm("Replace existing outputs without asking?", cfg.Output.Overwrite)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Output.Overwrite = overwrite
	return nil
}

func promptBatch(prompter Prompter, cfg *config.Config) error {
	workers, err := promptInt(prompter, "Batch workers (0 = CPUs-1)?", cfg.Batch.Workers)
	if err != nil {
		return err
	}
	cfg.Batch.Workers = workers

	exts, err := promptString(prompter, "Video extensions for batch mode (comma separated)?", strings.Join(cfg.Batch.Extensions, ","))
	if err != nil {
		return err
	}
	cfg.Batch.Extensions = nil
	for _, ext := range strings.Split(exts, ",") {
		if ext = strings.TrimSpace(ext); ext != "" {
			cfg.Batch.Extensions = append(cfg.Batch.Extensions, ext)
		}
	}
	return nil
}
