package profile

// Value is one of the statements listed under the profile photo.
type Value struct {
	Heading string `json:"heading"`
	Body    string `json:"body"`
}

// Profile captures the static content of the profile panel.
type Profile struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Title            string   `json:"title"`
	Tagline          string   `json:"tagline"`
	PhotoAlt         string   `json:"photoAlt"`
	Values           []Value  `json:"values"`
	ChatHeading      string   `json:"chatHeading"`
	Greeting         []string `json:"greeting"`
	ExampleQuestions []string `json:"exampleQuestions"`
	InputPlaceholder string   `json:"inputPlaceholder"`
}

// Seed returns the profile shown on the portfolio page.
func Seed() []Profile {
	return []Profile{
		{
			ID:       "shin-junhee",
			Name:     "신준희",
			Title:    "WEB DEVELOPER",
			Tagline:  "편의점같은 개발자",
			PhotoAlt: "프로필 사진",
			Values: []Value{
				{Heading: "편리함을 추구하고", Body: "편의점은 불이 꺼지지 않고 밤새 고객이 원하는 것들을 제공해 줍니다."},
				{Heading: "의로움으로 세상을 도우고", Body: "올바른 가치관으로 세상에 도움이 되는 개발을 지향합니다."},
				{Heading: "점점 발전하는", Body: "편의점같은 개발자가 되고 싶습니다!"},
			},
			ChatHeading: "💬 무엇이든 물어보세요!",
			Greeting: []string{
				"안녕하세요! 신준희에 대해 궁금한 것이 있으시면",
				"아래에 메시지를 입력해주세요.",
			},
			ExampleQuestions: []string{
				"어떤 프로젝트 경험이 있나요?",
				"네이버에 지원하는 이유는?",
				"주요 기술 스택은 무엇인가요?",
			},
			InputPlaceholder: "메시지를 입력하세요...",
		},
	}
}
