package cmd

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veendy/blink-counter/publish"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("BLINK_QUEUE_SIZE", "64")
	t.Setenv("BLINK_TOPIC", "from/env")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("queue-size", 16, "")
	flags.String("topic", "default", "")
	require.NoError(t, flags.Parse([]string{"--topic", "from/flag"}))

	require.NoError(t, applyEnv(flags))

	size, _ := flags.GetInt("queue-size")
	topic, _ := flags.GetString("topic")
	assert.Equal(t, 64, size)
	assert.Equal(t, "from/flag", topic)
}

func TestApplyEnv_Invalid(t *testing.T) {
	t.Setenv("BLINK_CAMERA", "front")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("camera", 0, "")

	assert.ErrorContains(t, applyEnv(flags), "BLINK_CAMERA")
}

func TestSessionConfig(t *testing.T) {
	root := NewRootCmd()
	require.NoError(t, root.ParseFlags([]string{"--camera", "2", "--gui=false", "--face-cascade", "face.xml"}))

	cfg, err := sessionConfig(root.Flags())
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.CameraID)
	assert.False(t, cfg.ShowGUI)
	assert.Equal(t, "face.xml", cfg.Face.Path)
	assert.Contains(t, cfg.Eye.Path, "haarcascade_eye_tree_eyeglasses.xml")
	assert.Equal(t, "htmtfunas/97921921312/test", cfg.Topic)
	assert.Equal(t, publish.DefaultPayloadFormat, cfg.PayloadFmt)
}

func TestNewSink(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"log", []string{"--sink", "log"}, ""},
		{"unknown", []string{"--sink", "kafka"}, `unknown sink "kafka"`},
		{"bad qos", []string{"--sink", "mqtt", "--qos", "3"}, "invalid qos 3"},
		{"bad redis url", []string{"--sink", "redis", "--redis-url", "::"}, "parse redis url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := NewRootCmd()
			require.NoError(t, root.ParseFlags(tt.args))

			sink, err := newSink(context.Background(), root.Flags(), quietLogger())
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, &publish.LogSink{}, sink)
		})
	}
}

func TestPublishCommand_LogSink(t *testing.T) {
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"publish", "--sink", "log", "--log-level", "debug"})

	require.NoError(t, root.Execute())

	assert.Contains(t, out.String(), "Hello, I'm Veendy")
	assert.Contains(t, out.String(), "htmtfunas/97921921312/tes")
}

func TestPublishCommand_Message(t *testing.T) {
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"publish", "--sink", "log", "-t", "custom/topic", "ping"})

	require.NoError(t, root.Execute())

	assert.Contains(t, out.String(), "ping")
	assert.Contains(t, out.String(), "custom/topic")
}

func TestPublishCommand_TooManyArgs(t *testing.T) {
	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"publish", "--sink", "log", "a", "b"})

	assert.Error(t, root.Execute())
}
