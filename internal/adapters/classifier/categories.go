package classifier

// Wire names of the moderation category taxonomy.
const (
	CategoryHate                  = "hate"
	CategoryHateThreatening       = "hate/threatening"
	CategoryHarassment            = "harassment"
	CategoryHarassmentThreatening = "harassment/threatening"
	CategorySelfHarm              = "self-harm"
	CategorySelfHarmIntent        = "self-harm/intent"
	CategorySelfHarmInstructions  = "self-harm/instructions"
	CategorySexual                = "sexual"
	CategorySexualMinors          = "sexual/minors"
	CategoryViolence              = "violence"
	CategoryViolenceGraphic       = "violence/graphic"
)

// Known lists every category the adapters may emit, in taxonomy order.
var Known = []string{
	CategoryHate,
	CategoryHateThreatening,
	CategoryHarassment,
	CategoryHarassmentThreatening,
	CategorySelfHarm,
	CategorySelfHarmIntent,
	CategorySelfHarmInstructions,
	CategorySexual,
	CategorySexualMinors,
	CategoryViolence,
	CategoryViolenceGraphic,
}
