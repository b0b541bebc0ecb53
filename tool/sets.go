package tool

import (
	ai "github.com/spetersoncode/chatter"
	"github.com/spetersoncode/chatter/permission"
)

// Registration pairs a tool definition with its handler for bulk registration.
type Registration struct {
	Tool    ai.Tool
	Handler Handler
}

// AgentTools returns the full set of guarded filesystem tools: read_file,
// write_file, update_file, search_files, list_directory, and file_info.
// Every handler consults the guard before touching the filesystem.
func AgentTools(guard *permission.Guard, fileOpts []FileToolOption, searchOpts []SearchToolOption) []Registration {
	regs := make([]Registration, 0, 6)

	for _, ctor := range []func(*permission.Guard, ...FileToolOption) (ai.Tool, Handler){
		NewReadFileTool,
		NewWriteFileTool,
		NewUpdateFileTool,
		NewListDirTool,
		NewFileInfoTool,
	} {
		t, h := ctor(guard, fileOpts...)
		regs = append(regs, Registration{Tool: t, Handler: h})
	}

	t, h := NewSearchTool(guard, searchOpts...)
	regs = append(regs, Registration{Tool: t, Handler: h})

	return regs
}

// RegisterAgentTools registers the full guarded tool set on a registry.
func RegisterAgentTools(r *Registry, guard *permission.Guard, fileOpts []FileToolOption, searchOpts []SearchToolOption) error {
	for _, reg := range AgentTools(guard, fileOpts, searchOpts) {
		if err := r.Register(reg.Tool, reg.Handler); err != nil {
			return err
		}
	}
	return nil
}
