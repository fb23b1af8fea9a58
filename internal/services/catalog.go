package services

// View is one entry of the primary navigation.
type View struct {
	ID           string `json:"id"`
	Label        string `json:"label"`
	Path         string `json:"path"`
	RequiresAuth bool   `json:"requiresAuth"`
	InNav        bool   `json:"inNav"`
}

type Feature struct {
	View        string `json:"view"`
	Title       string `json:"title"`
	Tag         string `json:"tag"`
	Description string `json:"description"`
}

type HomePage struct {
	Headline string    `json:"headline"`
	Features []Feature `json:"features"`
	Badges   []string  `json:"badges"`
}

type Founder struct {
	Name   string   `json:"name"`
	Role   string   `json:"role"`
	Points []string `json:"points"`
}

type AboutPage struct {
	Title   string    `json:"title"`
	Mission string    `json:"mission"`
	Values  []Feature `json:"values"`
	Founder Founder   `json:"founder"`
	Closing string    `json:"closing"`
}

var views = []View{
	{ID: "home", Label: "Home", Path: "/api/home", InNav: true},
	{ID: "assistant", Label: "Reply Buddy", Path: "/api/reply", InNav: true},
	{ID: "vibe_check", Label: "Vibe Decoder", Path: "/api/vibe", InNav: true},
	{ID: "icebreaker", Label: "Icebreakers", Path: "/api/icebreakers", InNav: true},
	{ID: "sandbox", Label: "Practice Lab", Path: "/api/practice", InNav: true},
	{ID: "about", Label: "About Us", Path: "/api/about", InNav: true},
	{ID: "contact", Label: "Contact", Path: "/api/contact", InNav: true},
	{ID: "auth", Label: "Sign In / Sign Up", Path: "/api/auth/signin"},
	{ID: "history", Label: "History", Path: "/api/history", RequiresAuth: true},
}

func Views() []View { return append([]View(nil), views...) }

func Home() HomePage {
	return HomePage{
		Headline: "Stop social burnout. Chat with confidence.",
		Features: []Feature{
			{View: "assistant", Title: "Reply Buddy", Tag: "Ghostwriter", Description: "Stuck on what to say? Paste the message and get charming, high-EQ responses instantly."},
			{View: "vibe_check", Title: "Vibe Decoder", Tag: "Deep Context", Description: "Overthinking that text? We analyze the subtext and tone so you don't have to."},
			{View: "icebreaker", Title: "Icebreakers", Tag: "Door Opener", Description: "Kill the silence. Get custom, non-cringe openers for any social or professional setting."},
			{View: "sandbox", Title: "Practice Lab", Tag: "Simulator", Description: "Roleplay stressful scenarios with an AI coach before the real thing. Zero embarrassment."},
		},
		Badges: []string{"100% Private", "For Introverts", "Gemini Powered"},
	}
}

func About() AboutPage {
	return AboutPage{
		Title:   "About Chatters.ai",
		Mission: "Chatters.ai is an AI-powered social bridge designed specifically for introverts. Our mission is to empower individuals who find social interactions challenging by providing them with the tools to communicate with confidence.",
		Values: []Feature{
			{Title: "Private & Secure", Description: "Your conversations and practice sessions are personal and stored locally."},
			{Title: "Precision Coaching", Description: "Advanced AI models provide nuanced feedback on social dynamics."},
			{Title: "Introvert-Centric", Description: "Designed with empathy for those who find socializing energy-intensive."},
		},
		Founder: Founder{
			Name: "Alice Wang",
			Role: "Founder",
			Points: []string{
				"Freshman at Cambridge Rindge and Latin School",
				"AIME Qualifier with a passion for mathematics and computer science",
				"Founded Chatters.ai to bridge AI technology and real-world social challenges",
				"Focused on developing analytical tools for social skill improvement in a safe environment",
			},
		},
		Closing: "We believe that technology should serve human connection. Chatters.ai isn't just an app; it's a movement towards more empathetic and effective communication in an increasingly digital world.",
	}
}
