package audiocut

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"vfrchap/internal/logging"
)

var commandContext = exec.CommandContext

var (
	// ErrVersion reports mkvmerge version output that could not be parsed.
	ErrVersion = errors.New("cannot determine mkvmerge version")
	// ErrMkvmerge reports an mkvmerge run that ended in an error status.
	ErrMkvmerge = errors.New("mkvmerge failed")
)

var (
	versionPattern = regexp.MustCompile(`v(\d+)\.(\d+)(?:\.(\d+))?`)
	trackPattern   = regexp.MustCompile(`Track ID (\d+): audio`)
)

// Version is an mkvmerge release number.
type Version struct {
	Major, Minor, Patch int
}

// PartsSplitVersion is the first release that splits by parts.
var PartsSplitVersion = Version{Major: 5, Minor: 6}

// ParseVersion reads the version from "mkvmerge --version" output.
func ParseVersion(output string) (Version, error) {
	m := versionPattern.FindStringSubmatch(output)
	if m == nil {
		return Version{}, fmt.Errorf("%w: %q", ErrVersion, strings.TrimSpace(output))
	}
	v := Version{}
	v.Major, _ = strconv.Atoi(m[1])
	v.Minor, _ = strconv.Atoi(m[2])
	if m[3] != "" {
		v.Patch, _ = strconv.Atoi(m[3])
	}
	return v, nil
}

// Less orders versions numerically.
func (v Version) Less(o Version) bool {
	if v.Major != o.Major {
		return v.Major < o.Major
	}
	if v.Minor != o.Minor {
		return v.Minor < o.Minor
	}
	return v.Patch < o.Patch
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Track is the first audio track of an input.
type Track struct {
	ID  int
	SBR bool
}

// Probe is what mkvmerge reports about itself and the input.
type Probe struct {
	Version Version
	Track   Track
}

// PartsSplit reports whether the probed mkvmerge can split by parts.
func (p Probe) PartsSplit() bool {
	return !p.Version.Less(PartsSplitVersion)
}

// Option configures a Splitter.
type Option func(*Splitter)

// WithBinary overrides the mkvmerge executable.
func WithBinary(binary string) Option {
	return func(s *Splitter) {
		if binary != "" {
			s.binary = binary
		}
	}
}

// WithTimeout bounds every mkvmerge invocation. Zero disables the limit.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Splitter) {
		s.timeout = timeout
	}
}

// WithLogger sets the logger for command and warning output.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Splitter) {
		s.logger = logger
	}
}

// Splitter runs mkvmerge.
type Splitter struct {
	binary  string
	timeout time.Duration
	logger  *slog.Logger
}

// NewSplitter constructs a Splitter for the "mkvmerge" found on PATH unless
// overridden.
func NewSplitter(opts ...Option) *Splitter {
	s := &Splitter{binary: "mkvmerge"}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.NewComponentLogger(s.logger, "audiocut")
	return s
}

// Binary returns the executable the splitter runs.
func (s *Splitter) Binary() string {
	return s.binary
}

// Version runs "mkvmerge --version".
func (s *Splitter) Version(ctx context.Context) (Version, error) {
	out, err := s.output(ctx, "--version")
	if err != nil {
		return Version{}, err
	}
	return ParseVersion(out)
}

// Identify finds the first audio track of input and whether mkvmerge flags
// it as SBR/HE-AAC. Inputs without a reported audio track use track 0.
func (s *Splitter) Identify(ctx context.Context, input string) (Track, error) {
	out, err := s.output(ctx, "--identify", input)
	if err != nil {
		return Track{}, err
	}
	for _, line := range strings.Split(out, "\n") {
		m := trackPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		id, _ := strconv.Atoi(m[1])
		return Track{ID: id, SBR: strings.Contains(line, "aac_is_sbr:true")}, nil
	}
	return Track{}, nil
}

// Probe runs Version and Identify.
func (s *Splitter) Probe(ctx context.Context, input string) (Probe, error) {
	version, err := s.Version(ctx)
	if err != nil {
		return Probe{}, err
	}
	track, err := s.Identify(ctx, input)
	if err != nil {
		return Probe{}, err
	}
	s.logger.Debug("probed mkvmerge",
		logging.String("version", version.String()),
		logging.Int("track", track.ID),
		logging.Bool("sbr", track.SBR),
	)
	return Probe{Version: version, Track: track}, nil
}

// Run executes plan: the split, then the merge and removal of split files
// when requested.
func (s *Splitter) Run(ctx context.Context, plan Plan) error {
	s.logger.Info("cutting audio", logging.String(logging.FieldOutput, plan.Output), logging.String("command", plan.Describe(s.binary)))
	if err := s.run(ctx, plan.Split); err != nil {
		return fmt.Errorf("split audio: %w", err)
	}
	if plan.Merge != nil {
		if err := s.run(ctx, plan.Merge); err != nil {
			return fmt.Errorf("merge audio parts: %w", err)
		}
	}
	for _, path := range plan.Remove {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove split file: %w", err)
		}
	}
	return nil
}

func (s *Splitter) context(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Splitter) output(ctx context.Context, args ...string) (string, error) {
	ctx, cancel := s.context(ctx)
	defer cancel()
	cmd := commandContext(ctx, s.binary, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("%s %s: %w: %s", filepath.Base(s.binary), args[0], err, strings.TrimSpace(stderr.String()))
	}
	return string(out), nil
}

// run treats exit status 1 as success with warnings and anything above as a
// failure.
func (s *Splitter) run(ctx context.Context, args []string) error {
	ctx, cancel := s.context(ctx)
	defer cancel()
	cmd := commandContext(ctx, s.binary, args...) //nolint:gosec
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output
	err := cmd.Run()
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		logging.WarnWithContext(s.logger, "mkvmerge finished with warnings", "mkvmerge_warnings",
			logging.String("output", strings.TrimSpace(output.String())),
			logging.String(logging.FieldErrorHint, "inspect the mkvmerge warnings above"),
			logging.String(logging.FieldImpact, "the cut audio may need manual review"),
		)
		return nil
	}
	return fmt.Errorf("%w: %w: %s", ErrMkvmerge, err, strings.TrimSpace(output.String()))
}
