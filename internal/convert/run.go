// Package convert implements the paginate subcommand.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/gompdf/gompage/internal/config"
	"github.com/gompdf/gompage/internal/state"
	"github.com/gompdf/gompage/pkg/api"
)

// Output formats
const (
	FormatHTML = "html"
	FormatPDF  = "pdf"
)

// Formats lists the supported output formats
func Formats() []string {
	return []string{FormatHTML, FormatPDF}
}

// Flags returns the flags of the paginate subcommand
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "to", Value: FormatHTML,
			Usage: "output `TYPE` (supported types: " + strings.Join(Formats(), ", ") + ")"},
		&cli.StringFlag{Name: "page-size", Aliases: []string{"ps"},
			Usage: "page `SIZE`: A3, A4, A5, Letter, Legal or WIDTHxHEIGHT in CSS lengths"},
		&cli.Float64Flag{Name: "capacity", Usage: "fixed page content height in `PX` (derived from the page template when 0)"},
		&cli.StringFlag{Name: "overflow", Usage: "what to do with a block larger than a page: error or place"},
		&cli.BoolFlag{Name: "overwrite", Aliases: []string{"ow"}, Usage: "overwrite an existing destination"},
	}
}

// Run paginates SOURCE and writes the result to DESTINATION
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("convert")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	env.Overwrite = cmd.Bool("overwrite")

	doc := env.Cfg.Document
	if cmd.IsSet("to") {
		doc.Output.Format = cmd.String("to")
	}
	if cmd.IsSet("page-size") {
		if doc.Page, err = ParsePageSize(cmd.String("page-size"), doc.Page.Landscape); err != nil {
			return err
		}
	}
	if cmd.IsSet("capacity") {
		doc.Capacity = cmd.Float64("capacity")
	}
	if cmd.IsSet("overflow") {
		doc.Overflow = cmd.String("overflow")
	}
	if doc.Output.Format != FormatHTML && doc.Output.Format != FormatPDF {
		return fmt.Errorf("unknown output format %q (supported: %s)", doc.Output.Format, strings.Join(Formats(), ", "))
	}

	remote := strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
	if !remote {
		if src, err = filepath.Abs(src); err != nil {
			return err
		}
	}
	dst, err := Destination(src, cmd.Args().Get(1), doc.Output.Format)
	if err != nil {
		return err
	}
	if dst != "-" && !env.Overwrite {
		if _, err := os.Stat(dst); err == nil {
			return fmt.Errorf("destination '%s' already exists, use --overwrite to replace it", dst)
		}
	}

	opts, err := Options(doc, log)
	if err != nil {
		return err
	}
	p := api.New(opts...)

	log.Info("Paginating", zap.String("source", src), zap.String("destination", dst), zap.String("format", doc.Output.Format))

	var res *api.Result
	if remote {
		res, err = p.PaginateURL(src)
	} else {
		res, err = p.PaginateFile(src)
	}
	if err != nil {
		return fmt.Errorf("unable to paginate '%s': %w", src, err)
	}
	for _, o := range res.Overflows {
		log.Warn("Block does not fit on a page", zap.Int("template", o.Template), zap.String("tag", o.Tag), zap.Int("row", o.Row))
	}

	write := res.WriteHTML
	if doc.Output.Format == FormatPDF {
		write = res.WritePDF
	}
	if err := WriteOutput(dst, write); err != nil {
		return err
	}

	log.Info("Done",
		zap.Int("pages", len(res.Pages)),
		zap.Int("overflows", len(res.Overflows)),
		zap.Float64("capacity", res.Capacity),
		zap.Int("measurements", res.MeasureCalls))
	return nil
}

// WriteOutput creates dst and fills it with write, "-" writes to standard
// output. A destination file left incomplete by a failed write is removed.
func WriteOutput(dst string, write func(io.Writer) error) (err error) {
	if dst == "-" {
		return write(os.Stdout)
	}

	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("unable to create destination file '%s': %w", dst, err)
	}
	defer func() {
		if er := f.Close(); er != nil {
			err = multierr.Append(err, fmt.Errorf("unable to close destination file '%s': %w", dst, er))
		}
		if err == nil {
			return
		}
		if er := os.Remove(dst); er != nil {
			err = multierr.Append(err, fmt.Errorf("unable to remove incomplete destination file '%s': %w", dst, er))
		}
	}()

	if err := write(f); err != nil {
		return fmt.Errorf("unable to write destination file '%s': %w", dst, err)
	}
	return nil
}

// Destination derives the output file. An empty dst or a directory gets the
// source name with a format specific suffix; "-" means standard output.
func Destination(src, dst, format string) (string, error) {
	if dst == "-" {
		return dst, nil
	}

	base := filepath.Base(src)
	if i := strings.IndexAny(base, "?#"); i >= 0 {
		base = base[:i]
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == "/" {
		base = "index"
	}
	name := base + ".paged.html"
	if format == FormatPDF {
		name = base + ".pdf"
	}

	if len(dst) == 0 {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("unable to get working directory: %w", err)
		}
		return filepath.Join(wd, name), nil
	}
	dst, err := filepath.Abs(dst)
	if err != nil {
		return "", err
	}
	if fi, err := os.Stat(dst); err == nil && fi.IsDir() {
		return filepath.Join(dst, name), nil
	}
	return dst, nil
}

// ParsePageSize accepts a named size (A3, A4, A5, Letter, Legal) or
// WIDTHxHEIGHT in CSS lengths, for example 210mmx297mm
func ParsePageSize(s string, landscape bool) (config.PageConfig, error) {
	pc := config.PageConfig{Landscape: landscape}
	s = strings.TrimSpace(s)
	for _, name := range []string{"A3", "A4", "A5", "Letter", "Legal"} {
		if strings.EqualFold(s, name) {
			pc.Size = name
			return pc, nil
		}
	}
	// the separator is the x followed by the height, "px" has one too
	v := strings.ToLower(strings.ReplaceAll(s, " ", ""))
	for i := 1; i < len(v)-1; i++ {
		if v[i] == 'x' && (v[i+1] == '.' || (v[i+1] >= '0' && v[i+1] <= '9')) {
			pc.Size = "custom"
			pc.Width, pc.Height = v[:i], v[i+1:]
			return pc, nil
		}
	}
	return pc, fmt.Errorf("invalid page size %q", s)
}

// Options translates the document configuration into paginator options
func Options(doc config.DocumentConfig, log *zap.Logger) ([]api.Option, error) {
	policy, err := api.ParseOverflowPolicy(doc.Overflow)
	if err != nil {
		return nil, err
	}

	opts := []api.Option{
		api.WithLogger(log),
		api.WithPageClass(doc.PageClass),
		api.WithContainerSelector(doc.Container),
		api.WithCapacity(doc.Capacity),
		api.WithTolerance(doc.Tolerance),
		api.WithOverflowPolicy(policy),
		api.WithTitle(doc.Output.Title),
		api.WithAuthor(doc.Output.Author),
	}

	switch doc.Page.Size {
	case "A3":
		opts = append(opts, api.WithPageSize(api.PageSizeA3Width, api.PageSizeA3Height))
	case "A4", "":
		opts = append(opts, api.WithPageSizeA4())
	case "A5":
		opts = append(opts, api.WithPageSize(api.PageSizeA5Width, api.PageSizeA5Height))
	case "Letter":
		opts = append(opts, api.WithPageSizeLetter())
	case "Legal":
		opts = append(opts, api.WithPageSizeLegal())
	case "custom":
		opts = append(opts, api.WithPageSize(doc.Page.Width, doc.Page.Height))
	default:
		return nil, fmt.Errorf("unknown page size %q", doc.Page.Size)
	}
	if doc.Page.Landscape {
		opts = append(opts, api.WithPageOrientation(api.PageOrientationLandscape))
	}
	return opts, nil
}
