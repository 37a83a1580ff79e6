package bot

import "testing"

func TestAnswerKeyNormalizesText(t *testing.T) {
	if answerKey("Сколько всего видео?") != answerKey("  сколько всего видео?  ") {
		t.Fatal("ключ кэша должен не зависеть от регистра и пробелов по краям")
	}
	if answerKey("Сколько всего видео?") == answerKey("Сколько всего лайков?") {
		t.Fatal("разные вопросы не должны давать один ключ")
	}
}

func TestReplyTextsDistinct(t *testing.T) {
	// "не понял вопрос" и "не смог ответить" — разные сообщения,
	// пользователь должен их различать.
	if helpText == execErrorText {
		t.Fatal("справка и сообщение об ошибке должны отличаться")
	}
}
