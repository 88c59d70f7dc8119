package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Render Errors (R001-R019)
	// ============================================

	"R001": {
		Category: CategoryRender,
		Message:  "Invalid element",
		Detail:   "The root or a child is not a valid tree node. Roots must be element, text, component or empty nodes; children may also be strings, numbers, sequences and fragments.",
	},
	"R002": {
		Category: CategoryRender,
		Message:  "Invalid tag name",
		Detail:   "Tag names must start with a letter and contain only letters, digits, ':', '_', '.' and '-'.",
	},
	"R003": {
		Category: CategoryRender,
		Message:  "Conflicting content",
		Detail:   "An element may have children or raw HTML content but not both, and void elements such as <img> or <br> may have neither.",
	},
	"R004": {
		Category: CategoryUsage,
		Message:  "Unsupported operation",
		Detail:   "The renderer only mounts. Updating, unmounting or reading host nodes of a mounted instance is not supported.",
	},
	"R005": {
		Category: CategoryRender,
		Message:  "Invalid style",
		Detail:   "The style prop expects a mapping from style properties to values, or a preformatted string.",
	},
	"R006": {
		Category: CategoryRender,
		Message:  "Invalid raw HTML payload",
		Detail:   "dangerouslySetInnerHTML expects a string of trusted markup.",
	},

	// ============================================
	// Config Errors (C001-C019)
	// ============================================

	"C001": {
		Category: CategoryConfig,
		Message:  "Config file invalid",
		Detail:   "The configuration file could not be read or parsed.",
	},
	"C002": {
		Category: CategoryConfig,
		Message:  "Invalid config value",
		Detail:   "A configuration value is out of range or not one of the accepted values.",
	},

	// ============================================
	// Storage Errors (S001-S019)
	// ============================================

	"S001": {
		Category: CategoryStorage,
		Message:  "Publish failed",
		Detail:   "The rendered markup could not be written to object storage.",
	},
	"S002": {
		Category: CategoryStorage,
		Message:  "Publisher not configured",
		Detail:   "Publishing requires a bucket name.",
	},
}
