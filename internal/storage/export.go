package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/molsim/internal/sim"
)

type ExportData struct {
	RunInfo
	Steps         int                `json:"steps"`
	InitialEnergy float64            `json:"initial_energy"`
	FinalEnergy   float64            `json:"final_energy"`
	MaxDrift      float64            `json:"max_drift"`
	Times         []float64          `json:"times"`
	Energies      []float64          `json:"energies"`
	Temperatures  []float64          `json:"temperatures"`
	Metrics       map[string]float64 `json:"metrics"`
}

func NewExportData(info RunInfo, result *sim.Result) ExportData {
	return ExportData{
		RunInfo:       info,
		Steps:         result.StepsTaken,
		InitialEnergy: result.InitialEnergy,
		FinalEnergy:   result.FinalEnergy,
		MaxDrift:      result.MaxDrift,
		Times:         result.Times,
		Energies:      result.Energies,
		Temperatures:  result.Temperatures,
		Metrics:       result.Metrics,
	}
}

func WriteJSON(w io.Writer, info RunInfo, result *sim.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewExportData(info, result))
}

// ExportJSON writes to path, or to stdout when path is "-".
func ExportJSON(path string, info RunInfo, result *sim.Result) error {
	if path == "-" {
		return WriteJSON(os.Stdout, info, result)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, info, result)
}
