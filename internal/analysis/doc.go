// Package analysis turns recorded run series into frequency content.
//
// Recorded frames are evenly spaced in time, so the kinetic temperature
// series of a run can be transformed directly:
//
//	s, err := analysis.PowerSpectrum(series.Temperatures, spacing)
//	f := s.Dominant() // THz when spacing is in ps
//
// Frequencies above the Nyquist limit of the recording interval alias back
// into the spectrum; record more often to resolve C-H stretches.
package analysis
