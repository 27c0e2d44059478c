package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/soypat/sheetmetal"
	"github.com/soypat/sheetmetal/internal/config"
	"github.com/soypat/sheetmetal/kernel"
	"github.com/soypat/sheetmetal/render"
)

// env is shared by all commands of one app.
type env struct {
	stdout io.Writer
	log    zerolog.Logger
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(stdout, stderr io.Writer) *cli.App {
	e := &env{stdout: stdout, log: zerolog.Nop()}
	app := &cli.App{
		Name:      "sheetmetal",
		Usage:     "Parametric sheet metal base shapes",
		Version:   Version,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Usage: "Log fold rounds and clamped dimensions"},
		},
		Before: func(c *cli.Context) error {
			level := zerolog.InfoLevel
			if c.Bool("verbose") {
				level = zerolog.DebugLevel
			}
			e.log = zerolog.New(zerolog.ConsoleWriter{Out: stderr, NoColor: true}).
				Level(level).With().Timestamp().Logger()
			return nil
		},
		Commands: []*cli.Command{
			buildCmd(e),
			configCmd(e),
			facesCmd(e),
			previewCmd(e),
			typesCmd(e),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// shapeFlags select the shape and override the configuration file.
func shapeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML parameter file"},
		&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Usage: "Shape type: L-Shape|U-Shape|Tub|Hat|Box"},
		&cli.Float64Flag{Name: "thickness", Usage: "Sheet thickness"},
		&cli.Float64Flag{Name: "radius", Usage: "Inner bend radius"},
		&cli.Float64Flag{Name: "width", Usage: "Outer width"},
		&cli.Float64Flag{Name: "length", Usage: "Outer length"},
		&cli.Float64Flag{Name: "height", Usage: "Outer height"},
		&cli.Float64Flag{Name: "flange-width", Usage: "Flange width of Hat and Box shapes"},
		&cli.BoolFlag{Name: "fill-gaps", Usage: "Close the corners between walls"},
		&cli.IntFlag{Name: "mesh-cells", Usage: "Mesh cells along the longest side"},
	}
}

// loadConfig reads the configuration file and applies the flags set on c.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("type") {
		typ, err := sheetmetal.ParseShapeType(c.String("type"))
		if err != nil {
			return nil, err
		}
		cfg.Type = typ
	}
	for name, dst := range map[string]*float64{
		"thickness":    &cfg.Thickness,
		"radius":       &cfg.Radius,
		"width":        &cfg.Width,
		"length":       &cfg.Length,
		"height":       &cfg.Height,
		"flange-width": &cfg.FlangeWidth,
	} {
		if c.IsSet(name) {
			*dst = c.Float64(name)
		}
	}
	if c.IsSet("fill-gaps") {
		cfg.FillGaps = c.Bool("fill-gaps")
	}
	if c.IsSet("mesh-cells") {
		cfg.MeshCells = c.Int("mesh-cells")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (e *env) build(c *cli.Context) (*config.Config, sheetmetal.Result, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, sheetmetal.Result{}, err
	}
	start := time.Now()
	res, err := sheetmetal.NewBuilder(kernel.New(), sheetmetal.WithLogger(e.log)).Build(cfg.Type, cfg.Parameters())
	if err != nil {
		return nil, sheetmetal.Result{}, err
	}
	e.log.Info().Stringer("shape", cfg.Type).Int("faces", res.Solid.NumFaces()).
		Dur("elapsed", time.Since(start)).Msg("shape built")
	return cfg, res, nil
}

func (e *env) mesh(cfg *config.Config, res sheetmetal.Result) render.Renderer {
	e.log.Debug().Int("mesh_cells", cfg.MeshCells).Msg("meshing")
	return render.NewOctreeRenderer(res.Solid.(*kernel.Solid), cfg.MeshCells)
}

// buildCmd creates the build command.
func buildCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "build",
		Usage: "Build a shape and write it as a binary STL file",
		Flags: append(shapeFlags(),
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Value: "part.stl", Usage: "Output STL file"},
		),
		Action: func(c *cli.Context) error {
			cfg, res, err := e.build(c)
			if err != nil {
				return outputError(err)
			}
			start := time.Now()
			out := c.String("output")
			if err := render.CreateSTL(out, stlHeader(cfg, res.Dimensions), e.mesh(cfg, res)); err != nil {
				return outputError(err)
			}
			e.log.Info().Str("output", out).Dur("elapsed", time.Since(start)).Msg("mesh written")
			return nil
		},
	}
}

// stlHeader tags an STL file with the shape and its compensated dimensions.
func stlHeader(cfg *config.Config, d sheetmetal.Dimensions) string {
	return fmt.Sprintf("sheetmetal %s t=%g r=%g w=%g l=%g h=%g f=%g",
		cfg.Type, cfg.Thickness, cfg.Radius, d.Width, d.Length, d.Height, d.FlangeWidth)
}

// configCmd creates the config command.
func configCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Print the effective configuration as YAML",
		Flags: shapeFlags(),
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return outputError(err)
			}
			return cfg.Write(e.stdout)
		},
	}
}

// previewCmd creates the preview command.
func previewCmd(e *env) *cli.Command {
	def := render.DefaultView()
	return &cli.Command{
		Name:  "preview",
		Usage: "Build a shape and render an isometric PNG preview",
		Flags: append(shapeFlags(),
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Value: "part.png", Usage: "Output PNG file"},
			&cli.IntFlag{Name: "image-width", Value: def.Width, Usage: "Image width in pixels"},
			&cli.IntFlag{Name: "image-height", Value: def.Height, Usage: "Image height in pixels"},
		),
		Action: func(c *cli.Context) error {
			cfg, res, err := e.build(c)
			if err != nil {
				return outputError(err)
			}
			model, err := render.RenderAll(e.mesh(cfg, res))
			if err != nil {
				return outputError(err)
			}
			view := render.DefaultView()
			view.Width, view.Height = c.Int("image-width"), c.Int("image-height")
			out := c.String("output")
			if err := render.SavePNG(out, model, view); err != nil {
				return outputError(err)
			}
			e.log.Info().Str("output", out).Int("triangles", len(model)).Msg("preview written")
			return nil
		},
	}
}

type foldOutput struct {
	Faces     []int   `json:"faces"`
	Thickness float64 `json:"thickness"`
	Length    float64 `json:"length"`
	Radius    float64 `json:"radius"`
	Flipped   bool    `json:"flipped"`
	AutoMiter bool    `json:"auto_miter"`
}

type facesOutput struct {
	Type         string       `json:"type"`
	Width        float64      `json:"width"`
	Length       float64      `json:"length"`
	Height       float64      `json:"height"`
	FlangeWidth  float64      `json:"flange_width"`
	Compensation float64      `json:"compensation"`
	Clamped      []string     `json:"clamped,omitempty"`
	Folds        []foldOutput `json:"folds"`
	Faces        int          `json:"faces"`
}

// facesCmd creates the faces command.
func facesCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "faces",
		Usage: "Print the compensated dimensions and fold rounds of a shape as JSON",
		Flags: shapeFlags(),
		Action: func(c *cli.Context) error {
			cfg, res, err := e.build(c)
			if err != nil {
				return outputError(err)
			}
			d := res.Dimensions
			out := facesOutput{
				Type:         cfg.Type.String(),
				Width:        d.Width,
				Length:       d.Length,
				Height:       d.Height,
				FlangeWidth:  d.FlangeWidth,
				Compensation: d.Compensation,
				Clamped:      d.Clamped,
				Faces:        res.Solid.NumFaces(),
			}
			for _, op := range res.Folds {
				out.Folds = append(out.Folds, foldOutput{
					Faces:     op.Faces,
					Thickness: op.Thickness,
					Length:    op.Length,
					Radius:    op.Radius,
					Flipped:   op.Flipped,
					AutoMiter: op.AutoMiter,
				})
			}
			return e.outputJSON(out)
		},
	}
}

// typesCmd creates the types command.
func typesCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "types",
		Usage: "List the shape types",
		Action: func(c *cli.Context) error {
			for _, typ := range sheetmetal.ShapeTypes() {
				fmt.Fprintln(e.stdout, typ)
			}
			return nil
		},
	}
}

func (e *env) outputJSON(v any) error {
	enc := json.NewEncoder(e.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats err for the CLI.
func outputError(err error) error {
	return cli.Exit(err.Error(), 1)
}
