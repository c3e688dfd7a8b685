package validators

import "go.mongodb.org/mongo-driver/bson"

var AuditRecordValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"actor_id",
			"action",
			"entity_type",
			"entity_id",
			"timestamp",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"actor_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"action": bson.M{
				"bsonType": "string",
				"enum":     []string{"CREATE", "UPDATE", "DELETE"},
			},

			"entity_type": bson.M{
				"bsonType": "string",
				"enum":     []string{"booking", "venue"},
			},

			"entity_id": bson.M{
				"bsonType": "string",
			},

			"old_value": bson.M{
				"bsonType": "object",
			},

			"new_value": bson.M{
				"bsonType": "object",
			},

			"request_id": bson.M{
				"bsonType": "string",
			},

			"remote_addr": bson.M{
				"bsonType": "string",
			},

			"timestamp": bson.M{
				"bsonType": "date",
			},
		},
	},
}
