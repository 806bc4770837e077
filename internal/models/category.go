package models

import (
	"fmt"
	"strings"

	"github.com/merzah/merzah/internal/apperr"
)

type Category string

const (
	CategoryHalaqah    Category = "halaqah"
	CategoryFundraiser Category = "fundraiser"
	CategoryYouth      Category = "youth"
	CategoryLecture    Category = "lecture"
	CategoryCommunity  Category = "community"
	CategoryWorkshop   Category = "workshop"
	CategorySeminar    Category = "seminar"
	CategoryConference Category = "conference"
	CategorySports     Category = "sports"
	CategorySocial     Category = "social"
	CategoryVolunteer  Category = "volunteer"
	CategoryIftar      Category = "iftar"
	CategoryTaraweeh   Category = "taraweeh"
	CategoryEid        Category = "eid"
)

var Categories = []Category{
	CategoryHalaqah, CategoryFundraiser, CategoryYouth, CategoryLecture,
	CategoryCommunity, CategoryWorkshop, CategorySeminar, CategoryConference,
	CategorySports, CategorySocial, CategoryVolunteer, CategoryIftar,
	CategoryTaraweeh, CategoryEid,
}

func ParseCategory(s string) (Category, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, c := range Categories {
		if string(c) == name {
			return c, nil
		}
	}
	return "", apperr.New(apperr.CodeValidationFailed, fmt.Sprintf("unknown event category %q", s))
}
