// Package chatter provides the core types for an interactive, tool-using
// LLM terminal client.
//
// The root package defines the provider-agnostic conversation model:
// [Message], [Response], [StreamEvent], tool definitions, and functional
// request options. Provider adapters for Google Gemini, Ollama, Anthropic,
// and OpenAI implement the [ChatProvider] interface.
//
// # Basic Usage
//
// Send a simple chat message:
//
//	p, err := google.New(ctx, os.Getenv("GEMINI_API_KEY"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	messages := []chatter.Message{
//	    chatter.NewUserMessage("What is the capital of France?"),
//	}
//
//	resp, err := p.Chat(ctx, messages, chatter.WithModel("gemini-2.0-flash"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(resp.Content)
//
// # Streaming Responses
//
// For real-time output, use ChatStream:
//
//	stream, err := p.ChatStream(ctx, messages, chatter.WithModel("gemini-2.0-flash"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for event := range stream {
//	    if event.Err != nil {
//	        log.Fatal(event.Err)
//	    }
//	    fmt.Print(event.Delta)
//	}
//
// # Tool Calling
//
// Define tools that the model can invoke:
//
//	tools := []chatter.Tool{
//	    {
//	        Name:        "get_weather",
//	        Description: "Get current weather for a location",
//	        Parameters: json.RawMessage(`{
//	            "type": "object",
//	            "properties": {
//	                "location": {"type": "string", "description": "City name"}
//	            },
//	            "required": ["location"]
//	        }`),
//	    },
//	}
//
//	resp, err := p.Chat(ctx, messages, chatter.WithTools(tools))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, call := range resp.ToolCalls {
//	    fmt.Printf("Tool: %s, Args: %s\n", call.Name, call.Arguments)
//	}
//
// # Higher-Level Abstractions
//
// For the full client, see:
//
//   - [github.com/spetersoncode/chatter/agent]: the autonomous tool-calling loop
//   - [github.com/spetersoncode/chatter/tool]: the tool registry and built-in file tools
//   - [github.com/spetersoncode/chatter/permission]: path-based access control for tools
//   - [github.com/spetersoncode/chatter/session]: conversation state and persistence
package chatter
