package chart

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/srr_metrics/backend/internal/aggregate"
	"github.com/srr_metrics/backend/internal/service"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func TestRenderServices(t *testing.T) {
	v := service.View{ServiceCounts: []aggregate.Count{{Value: "Billing", Count: 4}, {Value: "Access", Count: 1}}}
	img, err := Render(KindServices, v)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(img, pngMagic))
}

func TestRenderHourlyAckAllZero(t *testing.T) {
	v := service.View{Breakdowns: map[aggregate.Dimension][]aggregate.BreakdownRow{
		aggregate.DimHour: {{Value: "9", Count: 2}, {Value: "10", Count: 1}},
	}}
	img, err := Render(KindHourlyAck, v)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(img, pngMagic))
}

func TestRenderAgentAck(t *testing.T) {
	v := service.View{Agents: []aggregate.AgentRow{{Agent: "Ana", AvgAckSeconds: 300}}}
	img, err := Render(KindAgentAck, v)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(img, pngMagic))
}

func TestRenderEmpty(t *testing.T) {
	_, err := Render(KindServices, service.View{})
	require.ErrorIs(t, err, ErrNoData)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("hourly_ack")
	require.NoError(t, err)
	require.Equal(t, KindHourlyAck, k)
	_, err = ParseKind("pie")
	require.ErrorIs(t, err, ErrUnknownChart)
}
