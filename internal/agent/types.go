package agent

// Request represents one user task handed to the agent loop
type Request struct {
	// Task is the user's message
	Task string

	// MaxIterations overrides the loop's configured iteration cap when > 0
	MaxIterations int
}

// Result represents the outcome of one loop run
type Result struct {
	// Content is the final text response from the model
	Content string

	// Records contains a record of all tool calls made during the run
	Records []ToolCallRecord

	// Iterations is the number of generation calls made
	Iterations int

	// HitIterationCap reports that the loop stopped because the cap was
	// reached while the model was still requesting tools
	HitIterationCap bool
}

// ToolCallRecord records a single tool call and its result
type ToolCallRecord struct {
	// ToolName is the name of the tool that was called
	ToolName string

	// Arguments is a rendering of the arguments passed to the tool
	Arguments string

	// Result is the output from the tool
	Result string

	// IsError indicates if the call was rejected, denied or failed
	IsError bool
}
