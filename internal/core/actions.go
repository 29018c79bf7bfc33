package core

const maxFollowUps = 2

// ProactiveActions maps an emotion cluster onto suggested side effects.
func ProactiveActions(emotion EmotionResult) []ProactiveAction {
	switch emotion.Emotion {
	case EmotionStress, EmotionAnxiety:
		return []ProactiveAction{
			{Action: "adjust_lighting", Value: "dim", Reason: "Create calming atmosphere"},
			{Action: "suggest_wellness", Value: "spa_treatment", Reason: "Help reduce stress"},
			{Action: "adjust_temperature", Value: "comfortable", Reason: "Optimize comfort"},
		}
	case EmotionSadness:
		return []ProactiveAction{
			{Action: "suggest_entertainment", Value: "uplifting_activity", Reason: "Boost mood"},
			{Action: "offer_comfort_food", Value: "favorite_dish", Reason: "Provide comfort"},
		}
	case EmotionJoy, EmotionExcitement:
		return []ProactiveAction{
			{Action: "suggest_premium_services", Value: "upgrade_options", Reason: "Enhance positive experience"},
			{Action: "recommend_activities", Value: "exciting_experiences", Reason: "Maintain positive energy"},
		}
	default:
		return []ProactiveAction{}
	}
}

// FollowUpQuestions returns up to two clarifying questions. Only room
// service, dining and wellness have any.
func FollowUpQuestions(category ServiceCategory) []string {
	var questions []string
	switch category {
	case ServiceRoomService:
		questions = []string{
			"Would you like me to schedule housekeeping for a specific time?",
			"Is there anything specific you'd like me to arrange for your room?",
			"Would you like me to adjust any room settings for you?",
		}
	case ServiceDining:
		questions = []string{
			"Do you have any dietary restrictions or preferences?",
			"What type of cuisine are you in the mood for?",
			"Would you like me to make a reservation for you?",
		}
	case ServiceWellness:
		questions = []string{
			"What type of wellness experience are you looking for?",
			"Do you have any specific health goals or preferences?",
			"Would you like me to check availability for spa services?",
		}
	default:
		return []string{}
	}
	return questions[:maxFollowUps]
}
