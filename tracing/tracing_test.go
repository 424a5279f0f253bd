package tracing

import (
	"bytes"
	"context"
	"testing"

	"github.com/danielbahrami/SE08-SP/common"
	"github.com/danielbahrami/SE08-SP/fsm"
	"github.com/danielbahrami/SE08-SP/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStdoutProviderExportsMachineSpans(t *testing.T) {
	var out bytes.Buffer
	tp, err := NewProvider(common.TraceConfig{Exporter: "stdout"}, &out)
	require.NoError(t, err)
	require.NotNil(t, tp)

	table := fsm.NewTable().AddTransition(state.Uninitialized, "init", state.Initializing)
	m, err := fsm.NewMachine(table, fsm.WithTracerProvider(tp))
	require.NoError(t, err)

	m.Apply(context.Background(), "init")
	require.NoError(t, tp.Shutdown(context.Background()))

	assert.Contains(t, out.String(), "fsm.Apply")
	assert.Contains(t, out.String(), "INITIALIZING")
	assert.Contains(t, out.String(), "smartlock")
}

func TestNoneProvider(t *testing.T) {
	for _, exporter := range []string{"", "none"} {
		tp, err := NewProvider(common.TraceConfig{Exporter: exporter}, nil)
		assert.NoError(t, err)
		assert.Nil(t, tp)
	}
}

func TestUnknownExporter(t *testing.T) {
	_, err := NewProvider(common.TraceConfig{Exporter: "jaeger"}, nil)
	assert.ErrorIs(t, err, ErrUnknownExporter)
}
