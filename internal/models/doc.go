// Package models defines the core domain records for MyDays.
//
// # Ownership
//
// Groups and their pending-request sub-records are shared, server-authoritative
// state: any authorized party may mutate them through the operations in
// internal/groups. Profiles belong to a single user, but privileged flows
// (group creation, join requests, group deletion) also write the profile's
// group pointer, which is why observers must treat the pointer as a hint to be
// reconciled rather than a fact.
//
// # Defaulting
//
// Records coming off the wire or out of storage are normalized once, at the
// boundary: a group with a blank name gets DefaultGroupName, a pending request
// with no display name gets DefaultDisplayName. Consumers never re-apply these
// rules.
//
// # Relationships
//
// Records reference each other by ID strings, never by pointers, to keep them
// serializable and to avoid circular references.
package models
