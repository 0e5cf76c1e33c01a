package spectral

import (
	"gonum.org/v1/gonum/mat"

	"github.com/physiolab/vitals/internal/dump"
)

// Default side-file names under the output directory.
const (
	FrequencyDumpName     = "frequency_domain.npz"
	TimeFrequencyDumpName = "time_frequency.npz"
)

// WriteArchive persists the averaged frequency array, power array and band
// powers (in BandNames order) to an .npz side file.
func (r *FrequencyResult) WriteArchive(path string) error {
	return dump.Write(path, []dump.Entry{
		dump.Vec("frequencies", r.Frequencies),
		dump.Vec("power", r.Power),
		dump.Vec("band_powers", r.Bands.Vector()),
	})
}

// ReadFrequencyArchive loads a frequency-domain side file written by
// WriteArchive.
func ReadFrequencyArchive(path string) (*FrequencyResult, error) {
	entries, err := dump.Read(path)
	if err != nil {
		return nil, err
	}

	result := &FrequencyResult{
		Frequencies: entries["frequencies"].Vector,
		Power:       entries["power"].Vector,
	}
	if bands := entries["band_powers"].Vector; len(bands) == len(BandNames) {
		result.Bands = BandPowers{VLF: bands[0], LF: bands[1], HF: bands[2], Ratio: bands[3]}
	}
	return result, nil
}

// WriteArchive persists the scale array and the coefficient and energy
// planes. The complex coefficient plane is stored as two real matrices,
// coefficients_real and coefficients_imag.
func (r *TimeFrequencyResult) WriteArchive(path string) error {
	rows := len(r.Coefficients)
	cols := 0
	if rows > 0 {
		cols = len(r.Coefficients[0])
	}

	re := mat.NewDense(rows, cols, nil)
	im := mat.NewDense(rows, cols, nil)
	energy := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			c := r.Coefficients[i][j]
			re.Set(i, j, real(c))
			im.Set(i, j, imag(c))
			energy.Set(i, j, r.Energy[i][j])
		}
	}

	return dump.Write(path, []dump.Entry{
		dump.Vec("scales", r.Scales),
		dump.Mat("coefficients_real", re),
		dump.Mat("coefficients_imag", im),
		dump.Mat("energy", energy),
	})
}

// ReadTimeFrequencyArchive loads a time-frequency side file written by
// WriteArchive.
func ReadTimeFrequencyArchive(path string) (*TimeFrequencyResult, error) {
	entries, err := dump.Read(path)
	if err != nil {
		return nil, err
	}

	result := &TimeFrequencyResult{Scales: entries["scales"].Vector}

	re := entries["coefficients_real"].Matrix
	im := entries["coefficients_imag"].Matrix
	energy := entries["energy"].Matrix
	if re == nil || im == nil || energy == nil {
		return result, nil
	}

	rows, cols := re.Dims()
	result.Coefficients = make([][]complex128, rows)
	result.Energy = make([][]float64, rows)
	for i := 0; i < rows; i++ {
		result.Coefficients[i] = make([]complex128, cols)
		result.Energy[i] = make([]float64, cols)
		for j := 0; j < cols; j++ {
			result.Coefficients[i][j] = complex(re.At(i, j), im.At(i, j))
			result.Energy[i][j] = energy.At(i, j)
		}
	}
	return result, nil
}
