package buildcontext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/railwayapp/compositor/internal/filesystems"
)

const nodeDockerfile = `FROM node:18-alpine AS deps
WORKDIR /app
COPY package*.json ./
RUN npm ci

FROM node:18-alpine
ENV NODE_ENV=production PORT=3000
EXPOSE 3000/tcp 9229
EXPOSE 3000
CMD ["node", "index.js"]
`

func TestParse(t *testing.T) {
	report, err := Parse([]byte(nodeDockerfile))
	require.NoError(t, err)

	assert.Equal(t, []string{"node:18-alpine", "node:18-alpine"}, report.BaseImages)
	assert.Equal(t, []uint{3000, 9229}, report.Exposed)
	assert.Equal(t, "production", report.Env["NODE_ENV"])
	assert.Equal(t, "3000", report.Env["PORT"])
	assert.True(t, report.Exposes(3000))
	assert.False(t, report.Exposes(8080))
}

func TestParse_IgnoresUnparseablePorts(t *testing.T) {
	report, err := Parse([]byte("FROM scratch\nEXPOSE $PORT 8000-8010 80\n"))
	require.NoError(t, err)
	assert.Equal(t, []uint{80}, report.Exposed)
}

func TestInspect(t *testing.T) {
	fs := filesystems.NewMemoryFS()
	fs.AddFile("node-app/dockerfile", []byte(nodeDockerfile))
	fs.AddFile("node-app/index.js", []byte("console.log('hi')"))
	fs.AddDir("empty-app")

	report, err := Inspect(fs, "node-app")
	require.NoError(t, err)
	assert.Equal(t, "node-app", report.Dir)
	assert.Equal(t, "node-app/dockerfile", report.Dockerfile)
	assert.True(t, report.Exposes(9229))

	_, err = Inspect(fs, "empty-app")
	assert.ErrorIs(t, err, ErrNoDockerfile)

	_, err = Inspect(fs, "missing-app")
	assert.ErrorIs(t, err, ErrNoDockerfile)
}
