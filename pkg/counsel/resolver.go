package counsel

// PersonaType is the user's self-selected role.
type PersonaType string

const (
	PersonaStudent      PersonaType = "student"
	PersonaProfessional PersonaType = "professional"
)

// Paths refining the professional persona.
const (
	PathUpgrade = "upgrade"
	PathSwitch  = "switch"
)

// Resolve derives the generator context string and the session greeting
// from the persona tuple. Pure, no failure modes: unknown personas fall
// back to the generic professional branch.
func Resolve(personaType PersonaType, path string) (contextString string, greeting string) {
	if personaType == PersonaStudent {
		if path != "" {
			return "A student interested in " + path,
				"Welcome to your AI career counseling session! I see you're interested in " + path +
					". What specific questions do you have about careers in this field?"
		}
		return "A student looking for general career guidance",
			"Welcome to your AI career counseling session! As a student, what educational or career topics would you like to explore today?"
	}

	switch path {
	case PathUpgrade:
		return "A professional looking to advance in their current career",
			"Welcome to your AI career counseling session! I understand you're looking to advance in your current career field. What's your current role, and what are your advancement goals?"
	case PathSwitch:
		return "A professional looking to switch to a new career field",
			"Welcome to your AI career counseling session! I understand you're considering changing career paths. What's your current field, and what areas are you interested in exploring?"
	default:
		return "A professional looking for general career guidance",
			"Welcome to your AI career counseling session! As a working professional, what career challenges or opportunities would you like to discuss today?"
	}
}

// IsValid reports whether the persona type is one of the known roles.
func (p PersonaType) IsValid() bool {
	return p == PersonaStudent || p == PersonaProfessional
}
