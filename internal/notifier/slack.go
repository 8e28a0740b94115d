package notifier

import "fmt"

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type slackBlock struct {
	Type   string      `json:"type"`
	Text   *slackText  `json:"text,omitempty"`
	Fields []slackText `json:"fields,omitempty"`
}

type slackMessage struct {
	Text   string       `json:"text"`
	Blocks []slackBlock `json:"blocks"`
}

func slackPayload(a Alert) slackMessage {
	return slackMessage{
		Text: a.Message,
		Blocks: []slackBlock{
			{
				Type: "section",
				Text: &slackText{Type: "mrkdwn", Text: "*UR-ly Alert*\n" + a.Message},
			},
			{
				Type: "section",
				Fields: []slackText{
					{Type: "mrkdwn", Text: fmt.Sprintf("*Available Rooms:*\n%d", a.Vacancies)},
					{Type: "mrkdwn", Text: fmt.Sprintf("*Property URL:*\n<%s|View Property>", a.PropertyURL)},
				},
			},
		},
	}
}
