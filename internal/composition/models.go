package composition

// Workflow is a batch of crunch jobs read from a YAML, JSON or TOML file
type Workflow struct {
	// Name of the workflow (required)
	Name string `mapstructure:"name"`

	// Optional description of the workflow
	Description string `mapstructure:"description"`

	// Version of the workflow definition
	Version string `mapstructure:"version"`

	// Ordered list of steps to execute
	Steps []Step `mapstructure:"steps"`

	// Variables that can be referenced in step fields as {{ .name }}
	Variables map[string]interface{} `mapstructure:"variables"`
}

// Step is one crunch invocation
type Step struct {
	// Unique name for the step (required)
	Name string `mapstructure:"name"`

	// compress, decompress or auto. auto lets the resolver pick, like the CLI does.
	Type string `mapstructure:"type"`

	Description string `mapstructure:"description"`

	// Optional template evaluated before the step runs; true, yes or 1 runs it
	Condition string `mapstructure:"condition"`

	Inputs []string `mapstructure:"inputs"`
	Output string   `mapstructure:"output"`

	// Keep going with the next step when this one fails
	ContinueOnError bool `mapstructure:"continue_on_error"`
}

// Step types
const (
	StepAuto       = "auto"
	StepCompress   = "compress"
	StepDecompress = "decompress"
)
