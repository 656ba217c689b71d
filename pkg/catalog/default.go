package catalog

import "github.com/steltz/stepper/pkg/domain"

var defaultCatalog = MustNew(
	domain.TextQuestion{
		Base:        domain.Base{ID: "card-location", Text: "Where did you find our card?", Position: 1, Required: true},
		Placeholder: "Your answer",
	},
	domain.TextQuestion{
		Base:        domain.Base{ID: "drinks", Text: "When going out, how many drinks is a good time?", Position: 2, Required: true},
		Placeholder: "Enter a number",
		InputMode:   domain.InputModeNumeric,
	},
	domain.TextareaQuestion{
		Base:        domain.Base{ID: "wine-tasting", Text: "Pretend you just did a tasting for a new glass of wine, give us the tasting notes", Position: 3, Required: true},
		Placeholder: "Describe the wine...",
		Rows:        4,
	},
	domain.TextQuestion{
		Base:        domain.Base{ID: "walkout-song", Text: "What's your MLB walkout song?", Position: 4, Required: true},
		Placeholder: "Song title",
	},
	domain.TextQuestion{
		Base:        domain.Base{ID: "nickname", Text: "Middle name + Street you grew up on?", Position: 5, Required: true},
		Placeholder: "Your answer",
	},
	domain.PhoneQuestion{
		Base:        domain.Base{ID: "phone", Text: "Cell Phone Number", Position: 6, Required: true},
		Placeholder: "(555) 123-4567",
	},
)

// Default returns the catalog shipped with the deployment.
func Default() *Catalog {
	return defaultCatalog
}
