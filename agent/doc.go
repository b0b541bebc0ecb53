// Package agent provides the autonomous tool-calling loop at the core of
// the chatter client.
//
// An agent orchestrates a conversation turn where the model can request tool
// calls, which are executed sequentially through a registry and the results
// fed back to the model until it produces a final response without tool
// calls, or the iteration cap forces an abort. The turn moves through an
// explicit state machine: Idle → Streaming → {ExecutingTool → Streaming}* →
// Completed | Aborted.
//
// # Basic Usage
//
// Create a registry, register tools with their handlers, then create an agent:
//
//	guard := permission.NewGuard()
//	guard.Allow(workdir)
//
//	registry := tool.NewRegistry()
//	tool.RegisterAgentTools(registry, guard, nil, nil)
//
//	a := agent.New(provider, registry)
//
//	result, err := a.Run(ctx, messages, agent.WithModel("gemini-2.0-flash"))
//	fmt.Println(result.Response.Content)
//
// # Streaming Events
//
// Use RunStream() to receive events as the agent executes:
//
//	events := a.RunStream(ctx, messages)
//	for e := range events {
//	    switch e.Type {
//	    case agent.EventStreamDelta:
//	        fmt.Print(e.Delta)
//	    case agent.EventToolCallStarted:
//	        fmt.Printf("\n[tool] %s\n", e.ToolCall.Name)
//	    }
//	}
//
// # Operator Approval
//
// An Approver hook gates tool execution on operator confirmation:
//
//	a.Run(ctx, messages, agent.WithApprover(
//	    func(ctx context.Context, call chatter.ToolCall) (bool, string) {
//	        return promptUser(call), "declined by operator"
//	    },
//	))
//
// Rejected calls are fed back to the model as error results so the
// conversation can continue.
package agent
