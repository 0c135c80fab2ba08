package jsruntime

import (
	"encoding/json"
	"strings"

	"github.com/dop251/goja"

	"kilometers.ai/loader/internal/core/domain/extension"
	"kilometers.ai/loader/internal/core/ports"
)

// newConsole routes console.* calls to the module's logger
func newConsole(vm *goja.Runtime, logger ports.Logger) *goja.Object {
	console := vm.NewObject()
	bind := func(name string, emit func(string, ...interface{})) {
		_ = console.Set(name, func(call goja.FunctionCall) goja.Value {
			emit(formatArgs(call.Arguments))
			return goja.Undefined()
		})
	}
	bind("log", logger.Info)
	bind("info", logger.Info)
	bind("warn", logger.Warn)
	bind("error", logger.Error)
	bind("debug", logger.Debug)
	return console
}

// newLoaderInfo exposes the running module's identity
func newLoaderInfo(vm *goja.Runtime, d extension.Descriptor) *goja.Object {
	info := vm.NewObject()
	_ = info.Set("identifier", d.Identifier())
	_ = info.Set("name", d.DisplayName())
	_ = info.Set("source", d.Source().String())
	return info
}

// newHostBridge exposes host navigation
func newHostBridge(vm *goja.Runtime, mctx ports.ModuleContext) *goja.Object {
	host := vm.NewObject()
	_ = host.Set("location", func(goja.FunctionCall) goja.Value {
		return vm.ToValue(mctx.Location())
	})
	_ = host.Set("navigate", func(call goja.FunctionCall) goja.Value {
		mctx.Navigate(call.Argument(0).String())
		return goja.Undefined()
	})
	return host
}

func formatArgs(args []goja.Value) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		parts = append(parts, formatValue(a))
	}
	return strings.Join(parts, " ")
}

func formatValue(v goja.Value) string {
	if v == nil {
		return "undefined"
	}
	obj, isObject := v.(*goja.Object)
	if !isObject || obj.ClassName() == "Error" {
		return v.String()
	}
	if _, isFunc := goja.AssertFunction(v); isFunc {
		return v.String()
	}
	if data, err := json.Marshal(v.Export()); err == nil {
		return string(data)
	}
	return v.String()
}
