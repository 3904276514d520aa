package models

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/go-playground/validator"
	"github.com/google/uuid"
	"github.com/safeher/safeher/utils"
)

const ContactsRecordKey = "safeher_contacts"

const (
	WHATSAPP_METHOD = "whatsapp"
	EMAIL_METHOD    = "email"
	SMS_METHOD      = "sms"
)

var ErrContactNotFound = errors.New("no contact with the given id")

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("not_blank", func(fl validator.FieldLevel) bool {
		return !utils.IsBlank(fl.Field().String())
	})
}

// Contact is a single emergency contact. Contacts are addressed by a
// generated id - never by their position in the list.
type Contact struct {
	ID     string `json:"id"`
	Name   string `json:"name" validate:"not_blank"`
	Method string `json:"method" validate:"oneof=whatsapp email sms"`
	Value  string `json:"value" validate:"not_blank"`
}

// ContactStore owns the emergency contact list. Every successful mutation
// persists the full list as one JSON record before returning.
type ContactStore struct {
	records *Store
}

func NewContactStore(records *Store) *ContactStore {
	return &ContactStore{records: records}
}

// List returns all contacts in insertion order. A missing or malformed
// persisted record is treated as an empty list, not an error.
func (cs *ContactStore) List() []Contact {
	contacts := []Contact{}

	value, err := cs.records.GetRecord(ContactsRecordKey)
	if errors.Is(err, ErrRecordNotFound) {
		return contacts
	}

	if err != nil {
		logg.Warnf("unable to load contacts, starting with an empty list: %v", err)
		return contacts
	}

	if err := json.Unmarshal([]byte(value), &contacts); err != nil {
		logg.Warnf("malformed contact record, starting with an empty list: %v", err)
		return []Contact{}
	}

	return contacts
}

// Get returns the contact with the given id or ErrContactNotFound
func (cs *ContactStore) Get(id string) (*Contact, error) {
	for _, contact := range cs.List() {
		if contact.ID == id {
			return &contact, nil
		}
	}

	return nil, ErrContactNotFound
}

// Add validates & appends a new contact, assigning it a fresh id
func (cs *ContactStore) Add(name, method, value string) (*Contact, error) {
	contact := Contact{
		ID:     uuid.NewString(),
		Name:   strings.TrimSpace(name),
		Method: method,
		Value:  strings.TrimSpace(value),
	}

	if err := validate.Struct(contact); err != nil {
		return nil, err
	}

	contacts := append(cs.List(), contact)
	if err := cs.persist(contacts); err != nil {
		return nil, err
	}

	return &contact, nil
}

// Update validates & replaces the fields of the contact with the given id
func (cs *ContactStore) Update(id, name, method, value string) (*Contact, error) {
	updated := Contact{
		ID:     id,
		Name:   strings.TrimSpace(name),
		Method: method,
		Value:  strings.TrimSpace(value),
	}

	if err := validate.Struct(updated); err != nil {
		return nil, err
	}

	contacts := cs.List()
	for i, contact := range contacts {
		if contact.ID != id {
			continue
		}

		contacts[i] = updated
		if err := cs.persist(contacts); err != nil {
			return nil, err
		}

		return &updated, nil
	}

	return nil, ErrContactNotFound
}

// Remove deletes the contact with the given id
func (cs *ContactStore) Remove(id string) error {
	contacts := cs.List()

	for i, contact := range contacts {
		if contact.ID != id {
			continue
		}

		contacts = append(contacts[:i], contacts[i+1:]...)
		return cs.persist(contacts)
	}

	return ErrContactNotFound
}

func (cs *ContactStore) persist(contacts []Contact) error {
	value, err := json.Marshal(contacts)
	if err != nil {
		return err
	}

	return cs.records.PutRecord(ContactsRecordKey, string(value))
}
