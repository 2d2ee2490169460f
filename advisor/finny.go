package advisor

import (
	"github.com/etnz/finance"
	"github.com/etnz/finance/renderer"
	"google.golang.org/genai"
)

// Model is the Gemini model every expert talks to.
var Model = "gemini-2.5-pro"

func instruction(text string) *genai.Content {
	return &genai.Content{Parts: []*genai.Part{{Text: text}}}
}

// newFinny creates the facilitator.
func newFinny(experts ...*Expert) *Expert {
	return &Expert{
		Name:      "Finny",
		ModelName: Model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(experts)},
			},
			SystemInstruction: instruction(`
			You are Finny, a friendly personal finance assistant. You are in charge of the conversation
			and of solving the user's request.

			The user practices envelope budgeting: every dollar of income is given a job by assigning it
			to a category, and spending comes out of the category envelopes. Money not yet assigned is
			"To Be Budgeted".

			Learn about the expert's skill that you can get from the Tools to ask them questions.
			They are at your service and keep context of your previous questions.
			Never invent figures: every amount you give comes from an expert.

			Keep answers short, use markdown tables when comparing figures, and end with one
			concrete suggestion when the user asked for advice.
			`),
		},
		Library: NewLibrary(experts),
	}
}

// NewResearcher creates an expert grounded on Google Search, for questions
// beyond the user's own ledger like interest rates or fund news.
func NewResearcher() *Expert {
	return &Expert{
		Name: "Researcher",
		Description: `This is an expert in personal finance products, banks, funds and the latest market news.
		Ask the Researcher whenever you need recent or general information that is not in the user's ledger.`,
		ModelName: Model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
			SystemInstruction: instruction(`
			You are an expert in personal finance, you can search and find about anything related to
			banks, loans, credit cards, funds and markets. You leverage Google Search to ground
			your assertions in a solid truth.
			`),
		},
	}
}

// NewBookkeeper creates the expert reading the user's ledger.
func NewBookkeeper(l *finance.Ledger, o renderer.Options) *Expert {
	lib := Tools(l, o)
	return &Expert{
		Name: "Bookkeeper",
		Description: `This is the Bookkeeper. They read the user's ledger: accounts, transactions, the
		monthly envelope budget, recurring transactions, debts, investments, savings goals and reports.`,
		ModelName: Model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: instruction(`
			You are the bookkeeper of the user's personal finance ledger.
			You know how to use the Tools to extract relevant figures about the user's money.
			You are part of a team of experts, yours is everything about the user's ledger. They might ask
			you questions with approximative language, figure out what they meant.
			Answer with the figures returned by the tools, never estimate them.
			`),
		},
		Library: NewLibrary(lib),
	}
}
