// Command ifdtool decodes and rewrites the Intel Flash Descriptor embedded
// in a SPI flash image.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/tadfisher/ifdtool/pkg/ifd"
	"github.com/tadfisher/ifdtool/pkg/log"
)

// buildVersion is overridden at link time with -ldflags, as the source's
// own build-identifier flags are.
var buildVersion = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("%v", err)
	}
}

type options struct {
	dump       bool
	layoutDump bool
	extract    string
	inject     string
	newLayout  string
	spiFreq    int
	density    int
	chip       int
	em100      bool
	lock       bool
	unlock     bool
	jsonOut    bool
	showVer    bool
}

func run(args []string) error {
	flags := pflag.NewFlagSet("ifdtool", pflag.ContinueOnError)
	opts := options{}

	flags.BoolVarP(&opts.dump, "dump", "d", false, "dump the flash descriptor")
	flags.BoolVar(&opts.layoutDump, "layout-dump", false, "dump the region layout in layout-file format")
	flags.StringVarP(&opts.extract, "extract", "x", "", "extract all regions to flashregion_N_name.bin files in this directory")
	flags.StringVarP(&opts.inject, "inject", "i", "", "inject a file into a region: region:file")
	flags.StringVarP(&opts.newLayout, "new-layout", "n", "", "rewrite the region layout from a layout file")
	flags.IntVar(&opts.spiFreq, "spi-freq", 0, "set SPI frequency in MHz: one of 17,20,30,33,48,50")
	flags.IntVar(&opts.density, "density", 0, "set chip density in MB (or 512 for 512KB)")
	flags.IntVar(&opts.chip, "chip", 0, "chip selector for --density: 0=both, 1=low, 2=high")
	flags.BoolVar(&opts.em100, "em100", false, "set SPI frequency and read mode for the EM100 emulator")
	flags.BoolVar(&opts.lock, "lock", false, "lock the flash descriptor")
	flags.BoolVar(&opts.unlock, "unlock", false, "unlock the flash descriptor")
	flags.BoolVar(&opts.jsonOut, "json", false, "emit --dump output as JSON instead of text")
	flags.BoolVar(&opts.showVer, "version", false, "print the build version and exit")

	if err := flags.Parse(args); err != nil {
		return err
	}

	if opts.showVer {
		fmt.Println(buildVersion)
		return nil
	}

	if err := validateModes(opts); err != nil {
		return err
	}

	remaining := flags.Args()
	if len(remaining) != 1 {
		return fmt.Errorf("expected exactly one image file argument, got %d", len(remaining))
	}
	path := remaining[0]

	buf, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	img := ifd.NewImage(buf)
	desc, err := ifd.Load(img)
	if err != nil {
		return fmt.Errorf("loading descriptor from %s: %w", path, err)
	}

	switch {
	case opts.dump:
		return doDump(desc, opts.jsonOut, os.Stdout)
	case opts.layoutDump:
		return desc.WriteLayout(os.Stdout)
	case opts.extract != "":
		return doExtract(desc, opts.extract)
	case opts.inject != "":
		if err := doInject(desc, opts.inject); err != nil {
			return err
		}
		return img.WriteFile(path + ".new")
	case opts.newLayout != "":
		return doRelayout(desc, opts.newLayout, path)
	case opts.spiFreq != 0:
		freq, ok := ifd.FreqFromMHz(opts.spiFreq)
		if !ok {
			return fmt.Errorf("unsupported --spi-freq %d", opts.spiFreq)
		}
		if err := desc.SetSPIFrequency(freq); err != nil {
			return err
		}
		return img.WriteFile(path + ".new")
	case opts.density != 0:
		density, ok := ifd.DensityFromMB(opts.density)
		if !ok {
			return fmt.Errorf("unsupported --density %d", opts.density)
		}
		if err := desc.SetChipDensity(density, ifd.Chip(opts.chip)); err != nil {
			return err
		}
		return img.WriteFile(path + ".new")
	case opts.em100:
		if err := desc.SetEM100Mode(); err != nil {
			return err
		}
		return img.WriteFile(path + ".new")
	case opts.lock:
		if err := desc.LockDescriptor(); err != nil {
			return err
		}
		return img.WriteFile(path + ".new")
	case opts.unlock:
		if err := desc.UnlockDescriptor(); err != nil {
			return err
		}
		return img.WriteFile(path + ".new")
	default:
		return desc.WriteText(os.Stdout)
	}
}

// validateModes enforces that at most one mutually exclusive mode flag is
// set, aggregating every conflict found rather than stopping at the
// first.
func validateModes(opts options) error {
	var modes []string
	if opts.dump {
		modes = append(modes, "--dump")
	}
	if opts.layoutDump {
		modes = append(modes, "--layout-dump")
	}
	if opts.extract != "" {
		modes = append(modes, "--extract")
	}
	if opts.inject != "" {
		modes = append(modes, "--inject")
	}
	if opts.newLayout != "" {
		modes = append(modes, "--new-layout")
	}
	if opts.spiFreq != 0 {
		modes = append(modes, "--spi-freq")
	}
	if opts.density != 0 {
		modes = append(modes, "--density")
	}
	if opts.em100 {
		modes = append(modes, "--em100")
	}
	if opts.lock {
		modes = append(modes, "--lock")
	}
	if opts.unlock {
		modes = append(modes, "--unlock")
	}
	if len(modes) > 1 {
		return fmt.Errorf("%w: %s", ifd.ErrConflictingModes, strings.Join(modes, ", "))
	}
	return nil
}

func doDump(desc *ifd.Descriptor, jsonOut bool, out *os.File) error {
	if !jsonOut {
		return desc.WriteText(out)
	}
	dump, err := desc.BuildDump()
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(dump)
}

func doExtract(desc *ifd.Descriptor, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	for r := ifd.RegionIndex(0); int(r) < desc.Version.MaxRegions(); r++ {
		if !r.Valid(desc.Version) {
			continue
		}
		payload, err := desc.ExtractRegion(r)
		if err != nil {
			return err
		}
		name := fmt.Sprintf("flashregion_%d_%s.bin", r, r.ExtractTag())
		if err := os.WriteFile(dir+string(os.PathSeparator)+name, payload, 0644); err != nil {
			return err
		}
	}
	return nil
}

func doInject(desc *ifd.Descriptor, spec string) error {
	parts := strings.SplitN(spec, ":", 2)
	if len(parts) != 2 {
		return fmt.Errorf("--inject expects region:file, got %q", spec)
	}
	region, ok := ifd.ParseRegionName(parts[0])
	if !ok {
		return fmt.Errorf("unknown region %q", parts[0])
	}
	payload, err := os.ReadFile(parts[1])
	if err != nil {
		return fmt.Errorf("reading %s: %w", parts[1], err)
	}
	return desc.InjectRegion(region, payload)
}

func doRelayout(desc *ifd.Descriptor, layoutPath, imagePath string) error {
	f, err := os.Open(layoutPath)
	if err != nil {
		return fmt.Errorf("opening layout file %s: %w", layoutPath, err)
	}
	defer f.Close()

	entries, err := ifd.ParseLayout(f)
	if err != nil {
		return err
	}
	newImage, err := desc.Relayout(entries, log.DefaultLogger)
	if err != nil {
		return err
	}
	return newImage.WriteFile(imagePath + ".new")
}
