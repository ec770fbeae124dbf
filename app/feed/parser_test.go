package feed

import (
	"reflect"
	"testing"
)

func TestParser_Run_GuildTitleAndAssignee(t *testing.T) {
	parser := NewParser()

	result := parser.Run("@Guild DGA - Kickoff meeting @Title Marty Supreme @Praveen", "")

	if result.GuildName != "DGA" {
		t.Errorf("Expected guild 'DGA', got '%s'", result.GuildName)
	}
	if result.GuildContext != "Kickoff meeting" {
		t.Errorf("Expected guild context 'Kickoff meeting', got '%s'", result.GuildContext)
	}
	if result.TitleName != "Marty Supreme" {
		t.Errorf("Expected title 'Marty Supreme', got '%s'", result.TitleName)
	}
	if result.MainAssignee != "Praveen" {
		t.Errorf("Expected assignee 'Praveen', got '%s'", result.MainAssignee)
	}
	if result.MainDescription != "Kickoff meeting - Marty Supreme" {
		t.Errorf("Expected description 'Kickoff meeting - Marty Supreme', got '%s'", result.MainDescription)
	}
	if len(result.Subtasks) != 0 {
		t.Errorf("Expected no subtasks, got %d", len(result.Subtasks))
	}
}

func TestParser_Run_Subtasks(t *testing.T) {
	parser := NewParser()

	result := parser.Run("Update", "- [ ] write draft @Alice\n- [x] review @Bob")

	expected := []Subtask{
		{Description: "write draft", AssigneeName: "Alice", Completed: false},
		{Description: "review", AssigneeName: "Bob", Completed: true},
	}
	if !reflect.DeepEqual(result.Subtasks, expected) {
		t.Errorf("Expected subtasks %+v, got %+v", expected, result.Subtasks)
	}
	if result.MainDescription != "Update" {
		t.Errorf("Expected description 'Update', got '%s'", result.MainDescription)
	}
	if result.MainAssignee != "" {
		t.Errorf("Expected no main assignee, got '%s'", result.MainAssignee)
	}
}

func TestParser_Run_ClientTagAfterTitle(t *testing.T) {
	parser := NewParser()

	result := parser.Run("@Guild SAG - Casting update @Title Uncut Gems 2 @client:A24", "")

	if result.GuildName != "SAG" {
		t.Errorf("Expected guild 'SAG', got '%s'", result.GuildName)
	}
	if result.TitleName != "Uncut Gems 2" {
		t.Errorf("Expected title 'Uncut Gems 2', got '%s'", result.TitleName)
	}
	if result.MainAssignee != "" {
		t.Errorf("Expected no assignee, got '%s'", result.MainAssignee)
	}
	if result.MainDescription != "Casting update - Uncut Gems 2" {
		t.Errorf("Expected description 'Casting update - Uncut Gems 2', got '%s'", result.MainDescription)
	}
}

func TestParser_Run_LastHeaderMentionWins(t *testing.T) {
	parser := NewParser()

	result := parser.Run("Review cut with @Alice and @bob", "")

	if result.MainAssignee != "bob" {
		t.Errorf("Expected assignee 'bob', got '%s'", result.MainAssignee)
	}
	if result.MainDescription != "Review cut with and" {
		t.Errorf("Expected description 'Review cut with and', got '%s'", result.MainDescription)
	}
}

func TestParser_Run_ReservedWordsMatchWholeWordsOnly(t *testing.T) {
	parser := NewParser()

	result := parser.Run("Costume fitting @Guildhall", "")

	if result.MainAssignee != "Guildhall" {
		t.Errorf("Expected assignee 'Guildhall', got '%s'", result.MainAssignee)
	}
	if result.GuildName != "" {
		t.Errorf("Expected no guild, got '%s'", result.GuildName)
	}
	if result.MainDescription != "Costume fitting" {
		t.Errorf("Expected description 'Costume fitting', got '%s'", result.MainDescription)
	}

	result = parser.Run("Costume fitting @guild", "")
	if result.MainAssignee != "" {
		t.Errorf("Expected bare keyword not to be an assignee, got '%s'", result.MainAssignee)
	}
}

func TestPersonMentions_SkipsReservedWords(t *testing.T) {
	got := personMentions("@Titleist @client @Clients @TITLE @client:A24 @Guild_2")
	expected := []string{"Titleist", "Clients", "Guild_2"}

	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

func TestParser_Run_KeywordsAreCaseInsensitive(t *testing.T) {
	parser := NewParser()

	result := parser.Run("@guild Teamsters @TITLE Night Shift", "")

	if result.GuildName != "Teamsters" {
		t.Errorf("Expected guild 'Teamsters', got '%s'", result.GuildName)
	}
	if result.TitleName != "Night Shift" {
		t.Errorf("Expected title 'Night Shift', got '%s'", result.TitleName)
	}
	if result.GuildContext != "" {
		t.Errorf("Expected no guild context, got '%s'", result.GuildContext)
	}
	if result.MainDescription != "Night Shift" {
		t.Errorf("Expected description 'Night Shift', got '%s'", result.MainDescription)
	}
}

func TestParser_Run_GuildContextBeforeSeparator(t *testing.T) {
	parser := NewParser()

	result := parser.Run("@Guild IATSE - Crew call - moved to Friday", "")

	if result.GuildName != "IATSE" {
		t.Errorf("Expected guild 'IATSE', got '%s'", result.GuildName)
	}
	if result.GuildContext != "Crew call" {
		t.Errorf("Expected guild context 'Crew call', got '%s'", result.GuildContext)
	}
	if result.MainDescription != "Crew call" {
		t.Errorf("Expected description 'Crew call', got '%s'", result.MainDescription)
	}
}

func TestParser_Run_GuildNameEndsAtMention(t *testing.T) {
	parser := NewParser()

	result := parser.Run("@Guild Writers Guild @Alice", "")

	if result.GuildName != "Writers Guild" {
		t.Errorf("Expected guild 'Writers Guild', got '%s'", result.GuildName)
	}
	if result.MainAssignee != "Alice" {
		t.Errorf("Expected assignee 'Alice', got '%s'", result.MainAssignee)
	}
	if result.MainDescription != "@Guild Writers Guild @Alice" {
		t.Errorf("Expected raw title as description, got '%s'", result.MainDescription)
	}
}

func TestParser_Run_MalformedTags(t *testing.T) {
	parser := NewParser()

	tests := []struct {
		name  string
		title string
	}{
		{"guild without name", "@Guild"},
		{"guild followed by mention", "@Guild @Alice"},
		{"title without name", "Notes @Title"},
		{"hyphenated guild name", "@Guild SAG-AFTRA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parser.Run(tt.title, "")
			if result.GuildName != "" {
				t.Errorf("Expected no guild, got '%s'", result.GuildName)
			}
			if result.TitleName != "" {
				t.Errorf("Expected no title, got '%s'", result.TitleName)
			}
			if result.MainDescription == "" {
				t.Error("Expected a non-empty description")
			}
		})
	}
}

func TestParser_Run_ExplicitTitleTagInContent(t *testing.T) {
	parser := NewParser()

	result := parser.Run("Schedule review", "@title:Past Lives\nsee attached")
	if result.TitleName != "Past Lives" {
		t.Errorf("Expected title 'Past Lives', got '%s'", result.TitleName)
	}
	if result.MainDescription != "Schedule review - Past Lives" {
		t.Errorf("Expected description 'Schedule review - Past Lives', got '%s'", result.MainDescription)
	}

	result = parser.Run("Schedule @Title Aftersun", "@title:Past Lives")
	if result.TitleName != "Aftersun" {
		t.Errorf("Expected header title 'Aftersun' to win, got '%s'", result.TitleName)
	}
}

func TestParser_Run_StripsBulletAndTrailingSeparator(t *testing.T) {
	parser := NewParser()

	result := parser.Run("*  Lock   picture  - @Bob", "")

	if result.MainDescription != "Lock picture" {
		t.Errorf("Expected description 'Lock picture', got '%s'", result.MainDescription)
	}
	if result.MainAssignee != "Bob" {
		t.Errorf("Expected assignee 'Bob', got '%s'", result.MainAssignee)
	}
}

func TestParser_Run_EmptyInput(t *testing.T) {
	parser := NewParser()

	result := parser.Run("", "  \n\n ")
	if result.MainDescription != "" || result.GuildName != "" || len(result.Subtasks) != 0 {
		t.Errorf("Expected empty result, got %+v", result)
	}

	result = parser.Run("Plain note", "")
	if result.MainDescription != "Plain note" {
		t.Errorf("Expected description 'Plain note', got '%s'", result.MainDescription)
	}
}

func TestParser_ParseSubtask(t *testing.T) {
	parser := NewParser()

	tests := []struct {
		line     string
		matched  bool
		expected Subtask
	}{
		{"- [ ] book stage", true, Subtask{Description: "book stage"}},
		{"- [X] call agent @praveen", true, Subtask{Description: "call agent", AssigneeName: "praveen", Completed: true}},
		{"-[x]no spaces", true, Subtask{Description: "no spaces", Completed: true}},
		{"- [] empty box", true, Subtask{Description: "empty box"}},
		{"- [ ] @Alice", true, Subtask{AssigneeName: "Alice"}},
		{"- [ ] email @Alice then @Bob", true, Subtask{Description: "email @Alice then", AssigneeName: "Bob"}},
		{"- plain bullet", false, Subtask{}},
		{"[ ] missing dash", false, Subtask{}},
		{"- [y] wrong mark", false, Subtask{}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			subtask, ok := parser.parseSubtask(tt.line)
			if ok != tt.matched {
				t.Fatalf("Expected matched=%t, got %t", tt.matched, ok)
			}
			if subtask != tt.expected {
				t.Errorf("Expected %+v, got %+v", tt.expected, subtask)
			}
		})
	}
}

func TestParser_Run_IgnoresNonChecklistLines(t *testing.T) {
	parser := NewParser()

	result := parser.Run("Prep @Alice", "notes first\n- [ ] budget\nrandom line\n- [x] permits @Bob")

	if len(result.Subtasks) != 2 {
		t.Fatalf("Expected 2 subtasks, got %d", len(result.Subtasks))
	}
	if result.Subtasks[0].Description != "budget" || result.Subtasks[0].AssigneeName != "" {
		t.Errorf("Unexpected first subtask: %+v", result.Subtasks[0])
	}
	if !result.Subtasks[1].Completed || result.Subtasks[1].AssigneeName != "Bob" {
		t.Errorf("Unexpected second subtask: %+v", result.Subtasks[1])
	}
}
