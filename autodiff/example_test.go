package autodiff_test

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/adtape/autodiff"
)

func Example() {
	if err := autodiff.Setup(1); err != nil {
		panic(err)
	}
	x := autodiff.Independent([]float64{3, 4})
	y := x[0].Mul(x[0]).Add(x[1].Mul(x[1]))
	f := autodiff.NewFunction(x, []autodiff.AD[float64]{y})
	defer f.Close()

	v, _ := f.Forward(0, []float64{3, 4})
	fmt.Println(v)
	fmt.Println(f.Reverse(1, []float64{1}))
	// Output:
	// [25]
	// [6 8]
}

func ExampleCondExp() {
	x := autodiff.Independent([]float64{1, 2})
	y := autodiff.CondExp(autodiff.Lt, x[0], x[1], x[0], x[1])
	f := autodiff.NewFunction(x, []autodiff.AD[float64]{y})
	defer f.Close()

	for _, p := range [][]float64{{1, 2}, {5, 3}} {
		v, _ := f.Forward(0, p)
		fmt.Println(v, f.Reverse(1, []float64{1}))
	}
	// Output:
	// [1] [1 0]
	// [3] [0 1]
}

func TestFacade_ErrorHandler(t *testing.T) {
	restore := autodiff.SetErrorHandler(autodiff.PanicOnError)
	defer restore()

	err := autodiff.Catch(func() {
		autodiff.Independent([]float64{})
	})
	require.NotNil(t, err)
	assert.True(t, err.Known)
}

func TestFacade_Kinds(t *testing.T) {
	x, d := autodiff.IndependentDynamic([]float64{1}, []float64{2})
	defer autodiff.Abort(x[0])

	assert.Equal(t, autodiff.Variable, x[0].Kind())
	assert.Equal(t, autodiff.Dynamic, d[0].Kind())
	assert.Equal(t, autodiff.Constant, autodiff.Const(2.0).Kind())
	assert.Equal(t, autodiff.Dynamic, autodiff.Sin(d[0]).Kind())
}

func TestFacade_PrintWriter(t *testing.T) {
	var buf bytes.Buffer
	x := autodiff.Independent([]float64{1})
	autodiff.PrintFor(x[0], "x = ", x[0], "\n")
	f := autodiff.NewFunction(x, []autodiff.AD[float64]{x[0].Mul(x[0])},
		autodiff.WithPrintWriter(&buf))
	defer f.Close()

	_, err := f.Forward(0, []float64{4})
	require.NoError(t, err)
	assert.Empty(t, buf.String())

	_, err = f.Forward(0, []float64{-2})
	require.NoError(t, err)
	assert.Equal(t, "x = -2\n", buf.String())
}

func TestFacade_IndependentOpensNewTape(t *testing.T) {
	x := autodiff.Independent([]float64{1})
	y := autodiff.Independent([]float64{2})
	defer autodiff.Abort(x[0])
	defer autodiff.Abort(y[0])

	assert.NotEqual(t, x[0].TapeID(), y[0].TapeID())
}
