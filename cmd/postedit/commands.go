package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/iw2rmb/postkit"
	"github.com/iw2rmb/postkit/internal/config"
	"github.com/iw2rmb/postkit/internal/logging"
	"github.com/iw2rmb/postkit/post"
	"github.com/iw2rmb/postkit/postabstract"
	"github.com/iw2rmb/postkit/render"
)

type cli struct {
	Config   string `name:"config" help:"Config file (default: $POSTEDIT_CONF)." type:"path"`
	LogLevel string `name:"log-level" help:"Log level: debug, info, warn or error. Overrides the config file."`
	Plain    bool   `help:"Render without colors or text attributes."`

	Delete  deleteCmd  `cmd:"" help:"Delete the range marked with < and > and show the result."`
	Render  renderCmd  `cmd:"" help:"Render a post."`
	Version versionCmd `cmd:"" help:"Print version information."`
}

// environment is what every command runs against.
type environment struct {
	out   io.Writer
	cfg   config.Config
	style render.Style
	log   *slog.Logger
}

func (c *cli) env(out io.Writer) (*environment, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	if c.LogLevel != "" {
		cfg.Log.Level = c.LogLevel
	}
	if c.Plain {
		cfg.Plain = true
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	logging.InitLogger(level, format)
	logging.Debug("config loaded", "path", c.Config, "blank_section_tag", cfg.BlankSectionTag, "plain", cfg.Plain)

	return &environment{
		out:   out,
		cfg:   cfg,
		style: render.NewStyle(out, cfg),
		log:   logging.GetLogger(),
	}, nil
}

type deleteCmd struct {
	Lines []string `arg:"" help:"Post lines, one leaf section each. Mark the range with < and >."`
}

func (c *deleteCmd) Run(env *environment) error {
	res, err := postabstract.Build(c.Lines...)
	if err != nil {
		return fmt.Errorf("build post: %w", err)
	}
	if !res.HasRange {
		return errors.New("no range marked: use < and >, or | for a collapsed range")
	}
	p := res.Post
	before := postabstract.Render(p)

	rd := render.New(env.style)
	rendered := rd.Render(p)
	ed := post.NewEditor(p, post.Options{
		BlankSectionTag: env.cfg.BlankSectionTag,
		Logger:          env.log,
		OnChange: func(ch post.Change) {
			rendered = rd.Apply(p, ch)
		},
	})

	var pos post.Position
	ch, err := ed.Run(func(e *post.Editor) error {
		var derr error
		pos, derr = e.DeleteRange(res.Range)
		return derr
	})
	if err != nil {
		return fmt.Errorf("delete range: %w", err)
	}
	env.log.Info("range deleted", "tx", ch.TxID, "dirty", len(ch.Dirty), "version", ch.VersionAfter)

	w := env.out
	fmt.Fprintln(w, "result:")
	writeIndented(w, postabstract.RenderCursor(p, pos))
	fmt.Fprintln(w, "rendered:")
	writeIndented(w, rendered)

	diff, err := unifiedDiff(before, postabstract.Render(p))
	if err != nil {
		return fmt.Errorf("diff: %w", err)
	}
	if diff != "" {
		fmt.Fprintln(w, "diff:")
		fmt.Fprint(w, diff)
	}
	fmt.Fprintln(w, summary(ch))
	return nil
}

type renderCmd struct {
	Lines []string `arg:"" help:"Post lines, one leaf section each."`
}

func (c *renderCmd) Run(env *environment) error {
	res, err := postabstract.Build(c.Lines...)
	if err != nil {
		return fmt.Errorf("build post: %w", err)
	}
	for _, line := range render.New(env.style).Render(res.Post) {
		fmt.Fprintln(env.out, line)
	}
	return nil
}

type versionCmd struct{}

func (versionCmd) Run(env *environment) error {
	if _, err := postkit.ParseRelease(postkit.Version()); err != nil {
		logging.Warn("embedded version is not semver", "version", postkit.Version(), "err", err)
	}
	if postkit.IsPrerelease() {
		fmt.Fprintf(env.out, "postedit %s (pre-release)\n", postkit.VersionTag())
		return nil
	}
	fmt.Fprintf(env.out, "postedit %s\n", postkit.VersionTag())
	return nil
}

func writeIndented(w io.Writer, lines []string) {
	for _, l := range lines {
		fmt.Fprintf(w, "  %s\n", l)
	}
}

func unifiedDiff(before, after []string) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(strings.Join(before, "\n") + "\n"),
		B:        difflib.SplitLines(strings.Join(after, "\n") + "\n"),
		FromFile: "before",
		ToFile:   "after",
		Context:  1,
	})
}

func summary(ch post.Change) string {
	var added, removed, changed int
	for _, d := range ch.Dirty {
		switch d.State {
		case post.SectionAdded:
			added++
		case post.SectionRemoved:
			removed++
		default:
			changed++
		}
	}
	if added+removed+changed == 0 {
		return fmt.Sprintf("nothing changed (version %s)", humanize.Comma(int64(ch.VersionAfter)))
	}

	var parts []string
	for _, c := range []struct {
		verb string
		n    int
	}{{"changed", changed}, {"removed", removed}, {"added", added}} {
		if c.n > 0 {
			parts = append(parts, c.verb+" "+english.Plural(c.n, "section", ""))
		}
	}
	return fmt.Sprintf("%s (version %s)", english.OxfordWordSeries(parts, "and"), humanize.Comma(int64(ch.VersionAfter)))
}
