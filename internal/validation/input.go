package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Константы валидации
const (
	MinUsernameLength        = 3
	MaxUsernameLength        = 30
	MinNameLength            = 2
	MaxNameLength            = 100
	MinPhoneDigits           = 7
	MaxPhoneDigits           = 15
	MinTaskTitleLength       = 3
	MaxTaskTitleLength       = 200
	MinTaskDescriptionLength = 10
	MaxTaskDescriptionLength = 5000
	MaxNoteLength            = 2000
	MaxSkillLength           = 50
	MaxSkillsCount           = 50
	MaxEstimatedHours        = 24 * 30
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	nameRegex     = regexp.MustCompile(`^[\p{L}0-9\s\-_.,'()]+$`)
	phoneRegex    = regexp.MustCompile(`^\+?[0-9\s\-()]+$`)
)

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateUsername проверяет имя пользователя.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("имя пользователя обязательно")
	}

	username = strings.TrimSpace(username)

	if err := ValidateLength("имя пользователя", username, MinUsernameLength, MaxUsernameLength); err != nil {
		return err
	}

	// Только буквы, цифры и подчеркивание
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("имя пользователя может содержать только буквы, цифры и подчеркивание")
	}

	if unicode.IsDigit(rune(username[0])) {
		return fmt.Errorf("имя пользователя не может начинаться с цифры")
	}

	return nil
}

// ValidateName проверяет имя работника.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("имя обязательно")
	}

	if err := ValidateLength("имя", name, MinNameLength, MaxNameLength); err != nil {
		return err
	}

	if !nameRegex.MatchString(name) {
		return fmt.Errorf("имя содержит недопустимые символы")
	}

	return nil
}

// ValidatePhone проверяет телефон: цифры с необязательным "+", пробелами, дефисами и скобками.
func ValidatePhone(phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return fmt.Errorf("телефон обязателен")
	}

	if !phoneRegex.MatchString(phone) {
		return fmt.Errorf("телефон содержит недопустимые символы")
	}

	var digits int
	for _, r := range phone {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	if digits < MinPhoneDigits || digits > MaxPhoneDigits {
		return fmt.Errorf("телефон должен содержать от %d до %d цифр", MinPhoneDigits, MaxPhoneDigits)
	}

	return nil
}

// ValidateTaskTitle проверяет название задачи.
func ValidateTaskTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("название задачи обязательно")
	}
	return ValidateLength("название задачи", title, MinTaskTitleLength, MaxTaskTitleLength)
}

// ValidateTaskDescription проверяет описание задачи.
func ValidateTaskDescription(description string) error {
	description = strings.TrimSpace(description)
	if description == "" {
		return fmt.Errorf("описание задачи обязательно")
	}
	return ValidateLength("описание задачи", description, MinTaskDescriptionLength, MaxTaskDescriptionLength)
}

// ValidateEstimatedDuration проверяет оценку длительности задачи в часах.
func ValidateEstimatedDuration(hours float64) error {
	if hours <= 0 {
		return fmt.Errorf("оценка длительности должна быть положительной")
	}
	if hours > MaxEstimatedHours {
		return fmt.Errorf("оценка длительности не может превышать %d часов", MaxEstimatedHours)
	}
	return nil
}

// ValidateNote проверяет необязательный текст (заметки о выполнении, отзыв).
func ValidateNote(fieldName, note string) error {
	return ValidateLength(fieldName, strings.TrimSpace(note), 0, MaxNoteLength)
}

// ValidateSkills проверяет массив навыков.
func ValidateSkills(skills []string) error {
	if len(skills) > MaxSkillsCount {
		return fmt.Errorf("количество навыков не может превышать %d", MaxSkillsCount)
	}

	seen := make(map[string]bool)
	for _, skill := range skills {
		skill = strings.TrimSpace(skill)
		if skill == "" {
			return fmt.Errorf("навык не может быть пустым")
		}

		if utf8.RuneCountInString(skill) > MaxSkillLength {
			return fmt.Errorf("навык не может быть длиннее %d символов", MaxSkillLength)
		}

		// Дубликаты без учета регистра
		skillLower := strings.ToLower(skill)
		if seen[skillLower] {
			return fmt.Errorf("навык '%s' указан дважды", skill)
		}
		seen[skillLower] = true
	}

	return nil
}
