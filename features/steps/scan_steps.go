//go:build integration

package steps

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"vidrop/cmd"
	"vidrop/domain/frame"
	"vidrop/domain/scan"
	"vidrop/domain/video"
	"vidrop/infrastructure/config"
	"vidrop/infrastructure/ffmpeg"
	"vidrop/infrastructure/filesystem"

	"github.com/cucumber/godog"
	"github.com/disintegration/imaging"
)

const (
	frameHeight = 12
	frameWidth  = 16
)

// logo returns a frameHeight x frameWidth RGB image whose left half is white
func logo() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, frameWidth, frameHeight))
	for y := 0; y < frameHeight; y++ {
		for x := 0; x < frameWidth; x++ {
			c := color.NRGBA{A: 255}
			if x < frameWidth/2 {
				c = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// syntheticVideo describes the frames a fake decoder produces for one file
type syntheticVideo struct {
	frames int
	fps    int
	logoAt int
}

// fakeDecoder yields black frames and the logo at logoAt
type fakeDecoder struct {
	video syntheticVideo
	pos   int
}

func (d *fakeDecoder) Decode() (frame.Frame, bool, error) {
	if d.pos >= d.video.frames {
		return frame.Frame{}, false, nil
	}
	pix := make([]uint8, frameHeight*frameWidth*3)
	if d.pos == d.video.logoAt {
		img := logo()
		for i, j := 0, 0; i < len(img.Pix); i, j = i+4, j+3 {
			pix[j], pix[j+1], pix[j+2] = img.Pix[i], img.Pix[i+1], img.Pix[i+2]
		}
	}
	d.pos++
	f, err := frame.NewRGB(frameHeight, frameWidth, pix)
	return f, err == nil, err
}

func (d *fakeDecoder) Close() error { return nil }

// fakeMedia implements scan.DecoderOpener and video.Prober over synthetic videos
type fakeMedia struct {
	videos map[string]syntheticVideo
}

func (m *fakeMedia) Open(ctx context.Context, videoPath string) (scan.Decoder, error) {
	v, ok := m.videos[filepath.Base(videoPath)]
	if !ok {
		return nil, fmt.Errorf("no synthetic video for %s", videoPath)
	}
	return &fakeDecoder{video: v}, nil
}

func (m *fakeMedia) Probe(ctx context.Context, videoPath string) (video.StreamInfo, error) {
	v := m.videos[filepath.Base(videoPath)]
	return video.StreamInfo{FrameRate: v.fps, TotalFrames: v.frames, Width: frameWidth, Height: frameHeight}, nil
}

// recordingRunner implements ffmpeg.CommandRunner, writing the output file of every Run
type recordingRunner struct {
	calls [][]string
}

func (r *recordingRunner) Run(ctx context.Context, name string, args ...string) error {
	r.calls = append(r.calls, append([]string{name}, args...))
	out := args[len(args)-1]
	if out == "-y" {
		out = args[len(args)-2]
	}
	return os.WriteFile(out, []byte("trimmed"), 0644)
}

func (r *recordingRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return []byte("ffmpeg version test"), nil
}

func (r *recordingRunner) Start(ctx context.Context, name string, args ...string) (io.ReadCloser, func() error, error) {
	return nil, nil, fmt.Errorf("decoding is faked in these scenarios")
}

// scanContext holds test state for scan scenarios
type scanContext struct {
	dir       string
	media     *fakeMedia
	runner    *recordingRunner
	images    []string
	confirmer *scriptedConfirmer
	output    *bytes.Buffer
	err       error
}

// scriptedConfirmer answers overwrite prompts
type scriptedConfirmer struct {
	answer bool
	asked  int
}

func (c *scriptedConfirmer) Confirm(message string, defaultValue bool) (bool, error) {
	c.asked++
	return c.answer, nil
}

// SharedScanContext is reset before each scenario via Before hook
var SharedScanContext *scanContext

func InitializeScanScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		dir, err := os.MkdirTemp("", "vidrop-features-*")
		if err != nil {
			return c, err
		}
		SharedScanContext = &scanContext{
			dir:       dir,
			media:     &fakeMedia{videos: make(map[string]syntheticVideo)},
			runner:    &recordingRunner{},
			confirmer: &scriptedConfirmer{},
			output:    &bytes.Buffer{},
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if SharedScanContext != nil {
			os.RemoveAll(SharedScanContext.dir)
		}
		SharedScanContext = nil
		return c, nil
	})

	ctx.Step(`^a video "([^"]*)" with (\d+) frames at (\d+) fps$`, aVideoWithFrames)
	ctx.Step(`^a video "([^"]*)" with (\d+) frames at (\d+) fps showing the logo at frame (\d+)$`, aVideoShowingTheLogoAt)
	ctx.Step(`^the reference image "([^"]*)"$`, theReferenceImage)
	ctx.Step(`^a reference image "([^"]*)" of (\d+)x(\d+) pixels$`, aReferenceImageOfSize)
	ctx.Step(`^the file "([^"]*)" already exists$`, theFileAlreadyExists)
	ctx.Step(`^I answer "([^"]*)" when asked to overwrite$`, iAnswerWhenAskedToOverwrite)
	ctx.Step(`^I scan "([^"]*)" with flags "([^"]*)"$`, iScanWithFlags)
	ctx.Step(`^I scan the directory with flags "([^"]*)"$`, iScanTheDirectoryWithFlags)
	ctx.Step(`^the exit code should be (\d+)$`, theExitCodeShouldBe)
	ctx.Step(`^the output should mention "([^"]*)"$`, theOutputShouldMention)
	ctx.Step(`^the error should mention "([^"]*)"$`, theErrorShouldMention)
	ctx.Step(`^the file "([^"]*)" should exist$`, theFileShouldExist)
	ctx.Step(`^the file "([^"]*)" should not exist$`, theFileShouldNotExist)
	ctx.Step(`^the file "([^"]*)" should contain "([^"]*)"$`, theFileShouldContain)
	ctx.Step(`^ffmpeg should not have been called$`, ffmpegShouldNotHaveBeenCalled)
	ctx.Step(`^ffmpeg should have been called with arguments:$`, ffmpegShouldHaveBeenCalledWithArguments)
}

func (s *scanContext) path(name string) string {
	return filepath.Join(s.dir, name)
}

func aVideoWithFrames(name string, frames, fps int) error {
	return aVideoShowingTheLogoAt(name, frames, fps, -1)
}

func aVideoShowingTheLogoAt(name string, frames, fps, logoAt int) error {
	s := SharedScanContext
	s.media.videos[name] = syntheticVideo{frames: frames, fps: fps, logoAt: logoAt}
	return os.WriteFile(s.path(name), []byte("original"), 0644)
}

func theReferenceImage(name string) error {
	s := SharedScanContext
	path := s.path(name)
	s.images = append(s.images, path)
	return imaging.Save(logo(), path)
}

func aReferenceImageOfSize(name string, width, height int) error {
	s := SharedScanContext
	path := s.path(name)
	s.images = append(s.images, path)
	return imaging.Save(imaging.New(width, height, color.White), path)
}

func theFileAlreadyExists(name string) error {
	return os.WriteFile(SharedScanContext.path(name), []byte("existing"), 0644)
}

func iAnswerWhenAskedToOverwrite(answer string) error {
	SharedScanContext.confirmer.answer = strings.EqualFold(answer, "y")
	return nil
}

// parseFlags turns a flag string into scan options the way the CLI does
func parseFlags(s *scanContext, flags string) (cmd.ScanOptions, error) {
	opts := cmd.ScanOptions{
		Range:          scan.DefaultRange(),
		Suffix:         video.DefaultOutputSuffix,
		QuantizeStep:   frame.DefaultQuantizeStep,
		ScoreTolerance: frame.DefaultScoreTolerance,
		HitRatio:       frame.DefaultHitRatio,
		Decoder:        config.DecoderFFmpeg,
	}
	var truncate, drop bool

	fields := strings.Fields(flags)
	for i := 0; i < len(fields); i++ {
		switch fields[i] {
		case "--truncate", "-t":
			truncate = true
		case "--drop", "-d":
			drop = true
		case "--overwrite":
			opts.Overwrite = true
		case "--dry-run":
			opts.DryRun = true
		case "--output", "-o":
			i++
			opts.Output = s.path(fields[i])
		case "--frames":
			i++
			rng, err := cmd.ParseFrames(fields[i])
			if err != nil {
				return opts, err
			}
			opts.Range = rng
		default:
			return opts, fmt.Errorf("unsupported flag %q", fields[i])
		}
	}

	mode, err := video.SelectMode(truncate, drop)
	if err != nil {
		return opts, err
	}
	opts.Mode = mode
	return opts, nil
}

func (s *scanContext) dependencies() cmd.ScanDependencies {
	return cmd.ScanDependencies{
		Opener:      s.media,
		Prober:      s.media,
		FileChecker: filesystem.NewChecker(),
		Copier:      ffmpeg.NewTrimmer(ffmpeg.WithCommandRunner(s.runner)),
		Publisher:   filesystem.NewPublisher(),
		Confirmer:   s.confirmer,
	}
}

func iScanWithFlags(name, flags string) error {
	s := SharedScanContext
	opts, err := parseFlags(s, flags)
	if err != nil {
		s.err = err
		return nil
	}
	s.err = cmd.RunScanWithDependencies(context.Background(), s.dependencies(), opts, s.path(name), s.images, s.output)
	return nil
}

func iScanTheDirectoryWithFlags(flags string) error {
	s := SharedScanContext
	opts, err := parseFlags(s, flags)
	if err != nil {
		s.err = err
		return nil
	}
	bopts := cmd.BatchOptions{Workers: 2, Extensions: []string{".mp4"}}
	s.err = cmd.RunBatchWithDependencies(context.Background(), s.dependencies(), opts, bopts, s.dir, s.images, s.output)
	return nil
}

func theExitCodeShouldBe(code int) error {
	if got := cmd.ExitCode(SharedScanContext.err); got != code {
		return fmt.Errorf("expected exit code %d, got %d (error: %v)", code, got, SharedScanContext.err)
	}
	return nil
}

func theOutputShouldMention(text string) error {
	if !strings.Contains(SharedScanContext.output.String(), text) {
		return fmt.Errorf("expected output to contain %q, got:\n%s", text, SharedScanContext.output.String())
	}
	return nil
}

func theErrorShouldMention(text string) error {
	err := SharedScanContext.err
	if err == nil {
		return fmt.Errorf("expected an error mentioning %q, got none", text)
	}
	if !strings.Contains(err.Error(), text) {
		return fmt.Errorf("expected error to contain %q, got %q", text, err.Error())
	}
	return nil
}

func theFileShouldExist(name string) error {
	if _, err := os.Stat(SharedScanContext.path(name)); err != nil {
		return fmt.Errorf("expected %s to exist: %w", name, err)
	}
	return nil
}

func theFileShouldNotExist(name string) error {
	if _, err := os.Stat(SharedScanContext.path(name)); !os.IsNotExist(err) {
		return fmt.Errorf("expected %s not to exist", name)
	}
	return nil
}

func theFileShouldContain(name, content string) error {
	data, err := os.ReadFile(SharedScanContext.path(name))
	if err != nil {
		return err
	}
	if string(data) != content {
		return fmt.Errorf("expected %s to contain %q, got %q", name, content, data)
	}
	return nil
}

func ffmpegShouldNotHaveBeenCalled() error {
	if n := len(SharedScanContext.runner.calls); n != 0 {
		return fmt.Errorf("expected no ffmpeg calls, got %d", n)
	}
	return nil
}

func ffmpegShouldHaveBeenCalledWithArguments(table *godog.Table) error {
	calls := SharedScanContext.runner.calls
	if len(calls) != 1 {
		return fmt.Errorf("expected 1 ffmpeg call, got %d", len(calls))
	}
	args := calls[0]

	for i, row := range table.Rows {
		if i == 0 {
			continue // Skip header row
		}
		flag, value := row.Cells[0].Value, row.Cells[1].Value
		found := false
		for j := 0; j+1 < len(args); j++ {
			if args[j] == flag && strings.HasSuffix(args[j+1], value) {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("expected %s %s in %v", flag, value, args)
		}
	}
	return nil
}
