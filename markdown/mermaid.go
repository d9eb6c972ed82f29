package markdown

import "github.com/google/uuid"

// Fenced code blocks tagged with this language get a diagram extension node
// (ADF) or macro (storage format) injected directly after them.
const MermaidLanguage = "mermaid"

// MermaidExtensionKey identifies the diagram-rendering app on the Confluence
// side. The platform locates extension nodes by this key; it is a fixed
// constant, never derived at runtime.
const MermaidExtensionKey = "com.stratusaddons.mermaid-cloud"

// MermaidExtensionType is the ADF extensionType for ecosystem apps.
const MermaidExtensionType = "com.atlassian.ecosystem"

// MermaidMacroName is the storage-format macro name of the diagram renderer.
const MermaidMacroName = "mermaid-cloud"

// NewLocalID returns a fresh identifier for one diagram occurrence. Each
// mermaid block in a document gets its own; IDs are never reused across
// occurrences or renders.
func NewLocalID() string {
	return uuid.NewString()
}

// IsMermaid reports whether a code block's language tag selects diagram
// extension injection.
func IsMermaid(language string) bool {
	return language == MermaidLanguage
}
