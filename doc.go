// Package main provides the entry point of classgroups, a service managing
// student group sets, groups and memberships of course units. It serves a JSON
// API with fiber, persists to sqlite, mysql or postgres through gorm, and keeps
// plagiarism match links and their evidence consistent.
package main
