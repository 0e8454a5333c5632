package moodboards

// RaceOutcome exposes the lost-update classifier used by Respond.
var RaceOutcome = (*Service).raceOutcome
