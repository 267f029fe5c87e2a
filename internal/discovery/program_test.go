package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/railwayapp/compositor/internal/filesystems"
)

func TestFindProgram(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		path    string
		want    string
		runtime string
	}{
		{
			name:    "yaml project",
			files:   map[string]string{"infra/Pulumi.yaml": "name: shop\nruntime: yaml\nresources: {}\n"},
			path:    "infra",
			want:    "infra/Pulumi.yaml",
			runtime: "yaml",
		},
		{
			name:    "json project",
			files:   map[string]string{"infra/Pulumi.json": `{"name": "shop", "runtime": "yaml", "resources": {}}`},
			path:    "infra",
			want:    "infra/Pulumi.json",
			runtime: "yaml",
		},
		{
			name: "nodejs project defaults to index.ts",
			files: map[string]string{
				"infra/Pulumi.yaml": "name: shop\nruntime:\n  name: nodejs\n  options:\n    typescript: true\n",
				"infra/index.ts":    "export {}",
			},
			path:    "infra",
			want:    "infra/index.ts",
			runtime: "nodejs",
		},
		{
			name: "nodejs main directory",
			files: map[string]string{
				"infra/Pulumi.yaml":  "name: shop\nruntime: nodejs\nmain: src/\n",
				"infra/src/index.js": "module.exports = {}",
			},
			path:    "infra",
			want:    "infra/src/index.js",
			runtime: "nodejs",
		},
		{
			name: "nodejs main file",
			files: map[string]string{
				"infra/Pulumi.yaml": "name: shop\nruntime: nodejs\nmain: app.ts\n",
				"infra/app.ts":      "export {}",
			},
			path:    "infra",
			want:    "infra/app.ts",
			runtime: "nodejs",
		},
		{
			name:  "file path is returned as is",
			files: map[string]string{"infra/index.ts": "export {}"},
			path:  "infra/index.ts",
			want:  "infra/index.ts",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := filesystems.NewMemoryFS()
			for path, content := range tt.files {
				fs.AddFile(path, []byte(content))
			}

			program, err := FindProgram(fs, tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, program.Path)
			assert.Equal(t, tt.runtime, program.Runtime)
		})
	}
}

func TestFindProgram_Errors(t *testing.T) {
	fs := filesystems.NewMemoryFS()
	fs.AddDir("empty")
	fs.AddFile("python/Pulumi.yaml", []byte("name: shop\nruntime: python\n"))
	fs.AddFile("noindex/Pulumi.yaml", []byte("name: shop\nruntime: nodejs\n"))

	_, err := FindProgram(fs, "empty")
	assert.ErrorIs(t, err, ErrNoProgram)

	_, err = FindProgram(fs, "python")
	assert.ErrorIs(t, err, ErrUnsupportedRuntime)

	_, err = FindProgram(fs, "noindex")
	assert.ErrorIs(t, err, ErrNoProgram)

	_, err = FindProgram(fs, "missing")
	assert.Error(t, err)
}
