package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/molsim/internal/analysis"
	"github.com/san-kum/molsim/internal/classify"
	"github.com/san-kum/molsim/internal/forcefield"
	"github.com/san-kum/molsim/internal/molecules"
	"github.com/san-kum/molsim/internal/params"
	"github.com/san-kum/molsim/internal/storage"
	"github.com/spf13/cobra"
)

var (
	heading = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	success = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	failure = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))
)

func loadTable() (*params.Table, error) {
	if paramsFile == "" {
		return params.MM4(), nil
	}
	return params.LoadYAML(paramsFile)
}

func classifyMolecule(cmd *cobra.Command, args []string) error {
	top, err := molecules.NewRegistry().Build(args[0], size)
	if err != nil {
		return err
	}
	rel := classify.Classify(top)
	table, err := loadTable()
	if err != nil {
		return err
	}
	model, err := forcefield.ParseStretchModel(stretch)
	if err != nil {
		return err
	}
	ff, err := forcefield.Assemble(top, rel, table, forcefield.Options{Cutoff: cutoff, Stretch: model})
	if err != nil {
		return err
	}

	fmt.Println(heading.Render(fmt.Sprintf("%s: %d atoms", args[0], top.NumAtoms())))
	c := rel.Counts()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RELATIONSHIP\tCOUNT")
	fmt.Fprintf(w, "bonds\t%d\n", c.Bonds)
	fmt.Fprintf(w, "angles\t%d\n", c.Angles)
	fmt.Fprintf(w, "torsions\t%d\n", c.Torsions)
	fmt.Fprintf(w, "1-3 pairs\t%d\n", c.Pairs13)
	fmt.Fprintf(w, "1-4 pairs\t%d\n", c.Pairs14)
	fmt.Fprintf(w, "exclusions\t%d\n", c.Exclusions)
	if err := w.Flush(); err != nil {
		return err
	}

	breakdown, err := ff.Breakdown(top.Positions())
	if err != nil {
		return err
	}
	counts := ff.Counts()

	fmt.Println()
	fmt.Println(heading.Render("force field terms"))
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tCOUNT\tENERGY (kJ/mol)")
	total := 0.0
	for _, k := range forcefield.Kinds {
		fmt.Fprintf(w, "%s\t%d\t%.6f\n", k, counts[k], breakdown[k])
		total += breakdown[k]
	}
	fmt.Fprintf(w, "total\t\t%.6f\n", total)
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMOLECULE\tTIME\tSTEPS\tDT\tTEMP\tMAX DRIFT")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.2ffs\t%.0fK\t%.4g\n",
			run.ID,
			run.Molecule,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps,
			run.TimestepFs,
			run.Temperature,
			run.MaxDrift,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	series, err := st.LoadEnergies(runID)
	if err != nil {
		return err
	}

	if len(series.Times) < 2 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Println(heading.Render("run: " + meta.ID))
	fmt.Println(dim.Render(fmt.Sprintf("%s, %d samples over %.3f ps", meta.Molecule, len(series.Times), meta.SimTime)))
	fmt.Println()

	for _, p := range []struct {
		data    []float64
		caption string
	}{
		{series.Energies, "total energy (kJ/mol)"},
		{series.Temperatures, "temperature (K)"},
	} {
		graph := asciigraph.Plot(p.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(p.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	series, err := st.LoadEnergies(runID)
	if err != nil {
		return err
	}
	if len(series.Times) < 4 {
		return fmt.Errorf("not enough samples for analysis")
	}

	spacing := series.Times[1] - series.Times[0]
	s, err := analysis.PowerSpectrum(series.Temperatures, spacing)
	if err != nil {
		return err
	}

	fmt.Println(heading.Render("frequency analysis: " + meta.ID))
	fmt.Println(dim.Render(fmt.Sprintf("%s, sample spacing %.4f ps, nyquist %.3f THz", meta.Molecule, spacing, s.Nyquist())))
	fmt.Println()

	graph := asciigraph.Plot(s.Power[1:],
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum (temperature)"),
	)
	fmt.Println(graph)
	fmt.Println()

	freq := s.Dominant()
	fmt.Printf("dominant frequency: %.3f THz (%.1f cm^-1)\n", freq, freq*analysis.WavenumberPerTHz)
	if freq > 0 {
		fmt.Printf("period: %.4f ps\n", 1/freq)
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func dumpParams(cmd *cobra.Command, args []string) error {
	def := params.MM4Definition()
	if paramsFile != "" {
		loaded, err := params.LoadDefinition(paramsFile)
		if err != nil {
			return err
		}
		if _, err := params.NewTable(*loaded); err != nil {
			return err
		}
		def = *loaded
	}
	return def.Encode(os.Stdout)
}
