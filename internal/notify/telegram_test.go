package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"

	"github.com/i474232898/ski-day-tracker/internal/weather"
)

type fakeSender struct {
	to   []tele.Recipient
	msgs []string
	err  error
}

func (f *fakeSender) Send(to tele.Recipient, what interface{}, _ ...interface{}) (*tele.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.to = append(f.to, to)
	f.msgs = append(f.msgs, what.(string))
	return &tele.Message{}, nil
}

func alert(resort string) weather.Alert {
	return weather.Alert{
		Resort:       resort,
		Message:      weather.AlertMessage(resort, 8),
		TemperatureF: 19.6,
		Conditions:   "light snow",
	}
}

func TestNotifyOncePerResortPerDay(t *testing.T) {
	now := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	sender := &fakeSender{}
	n := NewTelegramWithSender(sender, 42, nil, func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, n.NotifyAlerts(ctx, []weather.Alert{alert("Stowe")}))
	require.NoError(t, n.NotifyAlerts(ctx, []weather.Alert{alert("Stowe"), alert("Jay Peak")}))
	require.NoError(t, n.NotifyAlerts(ctx, []weather.Alert{alert("Jay Peak")}))

	require.Len(t, sender.msgs, 2)
	assert.Equal(t, "42", sender.to[0].Recipient())
	assert.Contains(t, sender.msgs[0], `Stowe expecting 8.0" of snow in next 48 hours!`)
	assert.Contains(t, sender.msgs[0], "20°F, light snow")
	assert.NotContains(t, sender.msgs[1], "Stowe")
	assert.Contains(t, sender.msgs[1], "Jay Peak")

	now = now.Add(24 * time.Hour)
	require.NoError(t, n.NotifyAlerts(ctx, []weather.Alert{alert("Stowe")}))
	assert.Len(t, sender.msgs, 3)
}

func TestNotifyRetriesAfterFailure(t *testing.T) {
	sender := &fakeSender{err: errors.New("network")}
	n := NewTelegramWithSender(sender, 1, nil, nil)

	assert.Error(t, n.NotifyAlerts(context.Background(), []weather.Alert{alert("Stowe")}))
	sender.err = nil
	require.NoError(t, n.NotifyAlerts(context.Background(), []weather.Alert{alert("Stowe")}))
	assert.Len(t, sender.msgs, 1)
}

func TestNewTelegramRequiresCredentials(t *testing.T) {
	_, err := NewTelegram("", 1, nil)
	assert.Error(t, err)
}
