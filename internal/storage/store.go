// Package storage keeps run metadata and the recorded energy series on
// disk, one directory per run.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/molsim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	energyFile   = "energy.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunInfo describes the inputs of a run.
type RunInfo struct {
	Molecule    string  `json:"molecule"`
	Atoms       int     `json:"atoms"`
	Seed        int64   `json:"seed"`
	TimestepFs  float64 `json:"timestep_fs"`
	Substeps    int     `json:"substeps"`
	Temperature float64 `json:"temperature"`
	Parameters  string  `json:"parameters"`
}

type RunMetadata struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	RunInfo
	Steps         int                `json:"steps"`
	SimTime       float64            `json:"sim_time_ps"`
	InitialEnergy float64            `json:"initial_energy"`
	FinalEnergy   float64            `json:"final_energy"`
	MaxDrift      float64            `json:"max_drift"`
	Metrics       map[string]float64 `json:"metrics"`
}

// Energies is the recorded series of a run: time in ps, total energy in
// kJ/mol and instantaneous temperature in kelvin.
type Energies struct {
	Times        []float64
	Energies     []float64
	Temperatures []float64
}

func newRunID(molecule string) string {
	return fmt.Sprintf("%s_%s", molecule, uuid.NewString()[:8])
}

func (s *Store) Save(info RunInfo, result *sim.Result) (string, error) {
	runID := newRunID(info.Molecule)
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:            runID,
		Timestamp:     time.Now(),
		RunInfo:       info,
		Steps:         result.StepsTaken,
		SimTime:       result.Time,
		InitialEnergy: result.InitialEnergy,
		FinalEnergy:   result.FinalEnergy,
		MaxDrift:      result.MaxDrift,
		Metrics:       result.Metrics,
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, energyFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write([]string{"time", "energy", "temperature"}); err != nil {
		return "", err
	}
	for i := range result.Times {
		row := []string{
			strconv.FormatFloat(result.Times[i], 'f', 6, 64),
			strconv.FormatFloat(result.Energies[i], 'g', 12, 64),
			strconv.FormatFloat(result.Temperatures[i], 'f', 3, 64),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return runID, nil
}

// List returns every readable run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func (s *Store) LoadEnergies(runID string) (*Energies, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, energyFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = 3

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	out := &Energies{}
	for i := 1; i < len(records); i++ {
		var row [3]float64
		for j, field := range records[i] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %w", energyFile, i+1, err)
			}
			row[j] = v
		}
		out.Times = append(out.Times, row[0])
		out.Energies = append(out.Energies, row[1])
		out.Temperatures = append(out.Temperatures, row[2])
	}

	return out, nil
}
