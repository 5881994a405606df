// Command adsdump inspects uploaded symbol and data type tables offline.
//
// The two tables are read from files, published through an in-memory
// controller and loaded exactly as from a live target:
//
//	adsdump --symbols symbols.bin --datatypes datatypes.bin tree MAIN
//	adsdump layout ST_AXIS
//	adsdump --image 0x4040=memory.bin read MAIN.machine.axes[0]
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/ads-symbols/catalog"
	"github.com/wippyai/ads-symbols/config"
	"github.com/wippyai/ads-symbols/errors"
	"github.com/wippyai/ads-symbols/simulator"
)

type flags struct {
	config      string
	symbols     string
	datatypes   string
	logLevel    string
	images      []string
	pointerSize uint32
	strict      bool
	json        bool
}

// app carries the loaded state shared by all subcommands.
type app struct {
	cfg    *config.Config
	cat    *catalog.Catalog
	sim    *simulator.Simulator
	logger *zap.Logger
	out    *printer
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	a := &app{}

	root := &cobra.Command{
		Use:          "adsdump",
		Short:        "Inspect controller symbol and data type tables",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd, f)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&f.config, "config", "c", "", "YAML config file")
	pf.StringVar(&f.symbols, "symbols", "", "symbol table blob (overrides config)")
	pf.StringVar(&f.datatypes, "datatypes", "", "data type table blob (overrides config)")
	pf.StringVar(&f.logLevel, "log-level", "", "log level (overrides config)")
	pf.StringSliceVar(&f.images, "image", nil, "memory image GROUP=FILE loaded into an index group")
	pf.Uint32Var(&f.pointerSize, "pointer-size", 0, "pointer width, 4 or 8 (overrides config)")
	pf.BoolVar(&f.strict, "strict", false, "fail on any degraded type")
	pf.BoolVar(&f.json, "json", false, "print JSON")

	root.AddCommand(
		newTreeCmd(a),
		newTypesCmd(a),
		newLayoutCmd(a),
		newDiagCmd(a),
		newReadCmd(a),
		newConfigCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, f *flags) error {
	cfg := config.DefaultConfig()
	if f.config != "" {
		var err error
		if cfg, err = config.Load(f.config); err != nil {
			return err
		}
	}
	if f.symbols != "" {
		cfg.Blobs.Symbols = f.symbols
	}
	if f.datatypes != "" {
		cfg.Blobs.DataTypes = f.datatypes
	}
	if f.logLevel != "" {
		cfg.Logging.Level = f.logLevel
	}
	if f.pointerSize != 0 {
		cfg.Catalog.PointerSize = f.pointerSize
	}
	if cmd.Flags().Changed("strict") {
		cfg.Catalog.Strict = f.strict
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	a.out = newPrinter(cmd.OutOrStdout(), f.json)

	logger, err := cfg.Logging.Build()
	if err != nil {
		return err
	}
	a.logger = logger
	catalog.SetLogger(logger.Named("catalog"))

	if cmd.Name() == "config" {
		return nil
	}
	return a.load(cmd.Context(), f.images)
}

func (a *app) load(ctx context.Context, images []string) error {
	symBlob, err := os.ReadFile(a.cfg.Blobs.Symbols)
	if err != nil {
		return errors.New(errors.PhaseLoad, errors.KindIO).Detail("read symbol table").Cause(err).Build()
	}
	dtBlob, err := os.ReadFile(a.cfg.Blobs.DataTypes)
	if err != nil {
		return errors.New(errors.PhaseLoad, errors.KindIO).Detail("read data type table").Cause(err).Build()
	}

	addr, err := a.cfg.Target.Address()
	if err != nil {
		return err
	}
	a.sim = simulator.New(addr)
	if err := a.sim.Install(symBlob, dtBlob); err != nil {
		return err
	}
	for _, img := range images {
		if err := a.loadImage(img); err != nil {
			return err
		}
	}

	a.cat, err = catalog.Load(ctx, a.sim, addr, a.cfg.Catalog.Options()...)
	if err != nil {
		return err
	}
	a.logger.Debug("catalog loaded",
		zap.Stringer("target", addr),
		zap.Int("symbols", len(a.cat.Symbols())),
		zap.Int("datatypes", len(a.cat.DataTypeNames())))
	return nil
}

// loadImage installs a GROUP=FILE memory image, padding it to the size
// the symbol table allocated for the group.
func (a *app) loadImage(spec string) error {
	groupStr, file, ok := strings.Cut(spec, "=")
	if !ok {
		return errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("image %q: want GROUP=FILE", spec))
	}
	group, err := strconv.ParseUint(groupStr, 0, 32)
	if err != nil {
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Detail("image index group %q", groupStr).
			Cause(err).
			Build()
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return errors.New(errors.PhaseLoad, errors.KindIO).Detail("read image %s", file).Cause(err).Build()
	}

	if cur, ok := a.sim.Region(uint32(group)); ok && len(cur) > len(data) {
		data = append(data, make([]byte, len(cur)-len(data))...)
	}
	return a.sim.SetRegion(uint32(group), data)
}

func (a *app) close() {
	if a.sim != nil {
		_ = a.sim.Close()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}
