package validators

import "go.mongodb.org/mongo-driver/bson"

var SessionValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"key",
			"team_a",
			"team_b",
			"expected_participants",
			"window",
			"state",
			"active",
			"version",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},

			"key": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},

			"team_a": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},

			"team_b": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},

			"expected_participants": bson.M{
				"bsonType": "int",
				"minimum":  2,
				"maximum":  50,
			},

			"window": bson.M{
				"bsonType": "array",
				"minItems": 7,
				"maxItems": 7,
				"items": bson.M{
					"bsonType": "object",
				},
			},

			"state": bson.M{
				"enum": []string{
					"awaiting_submissions",
					"searching",
					"proposed_full",
					"awaiting_excluded_response",
					"confirmed",
					"exhausted",
				},
			},

			"active": bson.M{
				"bsonType": "bool",
			},

			"version": bson.M{
				"bsonType": "long",
				"minimum":  1,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
