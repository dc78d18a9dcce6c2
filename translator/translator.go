package translator

import (
	"context"
	"sync"

	gst "github.com/richinsley/goshadertranslator"
)

var (
	translator *gst.ShaderTranslator
	initErr    error
	once       sync.Once
)

// GetTranslator returns the process-wide shader translator, creating it on
// first use. Creating one instantiates the ANGLE module, so it is shared.
func GetTranslator() (*gst.ShaderTranslator, error) {
	once.Do(func() {
		translator, initErr = gst.NewShaderTranslator(context.Background())
	})
	return translator, initErr
}

// MappedName returns the identifier the translator gave name in the first of
// shaders that declares it. Names no stage declares are returned unchanged.
func MappedName(name string, shaders ...*gst.Shader) string {
	for _, s := range shaders {
		if s == nil {
			continue
		}
		if v, ok := s.Variables[name]; ok {
			return v.MappedName
		}
	}
	return name
}
