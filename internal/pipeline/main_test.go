package pipeline

import (
	"fmt"
	"math"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// quakeMMI spans all three intensity bands, including both band edges.
var quakeMMI = []float64{
	2.1, 3.0, 3.5, 3.99, 2.8, 3.2, 1.9,
	4.0, 4.2, 4.5, 4.99, 4.7, 4.1,
	5.0, 5.5, 6.2, 7.0, 5.1, 8.3, 6.6,
}

// rawQuakes builds a 20-row raw event table whose magnitude tracks mmi.
// Rows listed in gaps get a missing felt value.
func rawQuakes(gaps ...int) dataframe.DataFrame {
	n := len(quakeMMI)
	ids := make([]string, n)
	times := make([]string, n)
	places := make([]string, n)
	felt := make([]float64, n)
	cdi := make([]float64, n)
	sig := make([]int, n)
	magnitude := make([]float64, n)
	depth := make([]float64, n)
	tsunami := make([]int, n)
	for i, mmi := range quakeMMI {
		ids[i] = fmt.Sprintf("us%04d", i)
		times[i] = fmt.Sprintf("2023-02-%02dT10:00:00Z", i+1)
		places[i] = fmt.Sprintf("%d km N of Somewhere", i+3)
		felt[i] = float64(10 * i)
		cdi[i] = mmi - 0.3
		sig[i] = 300 + 40*i
		magnitude[i] = 2.5 + mmi/2
		depth[i] = float64(5 + (i*13)%60)
		tsunami[i] = i % 2
	}
	for _, g := range gaps {
		felt[g] = math.NaN()
	}
	return dataframe.New(
		series.New(ids, series.String, "id"),
		series.New(times, series.String, "time"),
		series.New(places, series.String, "place"),
		series.New(felt, series.Float, "felt"),
		series.New(cdi, series.Float, "cdi"),
		series.New(quakeMMI, series.Float, "mmi"),
		series.New(sig, series.Int, "significance"),
		series.New(magnitude, series.Float, "magnitude"),
		series.New(depth, series.Float, "depth"),
		series.New(tsunami, series.Int, "tsunami"),
	)
}
